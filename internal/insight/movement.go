package insight

import (
	"fmt"
	"strings"
	"time"

	"github.com/nathanoyet/contra-ai/internal/earnings"
	"github.com/nathanoyet/contra-ai/pkg/alphavantage"
	"github.com/shopspring/decimal"
)

const (
	preEarningsDays = 30
	dayLayout       = "2006-01-02"
	postMarket      = "post-market"
)

var hundred = decimal.NewFromInt(100)

// Movement is a close-to-close price change.
type Movement struct {
	FromDate string
	From     decimal.Decimal
	ToDate   string
	To       decimal.Decimal
}

// Percent is the change from From to To, rounded to two places.
func (m Movement) Percent() decimal.Decimal {
	if m.From.IsZero() {
		return decimal.Zero
	}
	return m.To.Sub(m.From).Div(m.From).Mul(hundred).Round(2)
}

func (m Movement) String() string {
	pct := m.Percent()
	sign := ""
	if pct.IsPositive() {
		sign = "+"
	}
	return fmt.Sprintf("%s%s%% (%s on %s to %s on %s)",
		sign, pct.StringFixed(2), m.From.StringFixed(2), m.FromDate, m.To.StringFixed(2), m.ToDate)
}

func movement(from, to alphavantage.Point) *Movement {
	return &Movement{
		FromDate: from.Time.Format(dayLayout),
		From:     decimal.NewFromFloat(from.Close),
		ToDate:   to.Time.Format(dayLayout),
		To:       decimal.NewFromFloat(to.Close),
	}
}

// LatestMovement compares the last close with the one before it. Points must
// be in ascending order.
func LatestMovement(points []alphavantage.Point) *Movement {
	if len(points) < 2 {
		return nil
	}
	return movement(points[len(points)-2], points[len(points)-1])
}

// EventMovement measures the reaction to a report. For post-market reports
// the reaction session is the first one after the report day and the base is
// the report day's close; otherwise the report day itself reacts and the base
// is the close before it.
func EventMovement(points []alphavantage.Point, reportDate, reportTime string) *Movement {
	day := earnings.NormalizeDate(reportDate)
	if day == "" || len(points) < 2 {
		return nil
	}

	afterClose := strings.EqualFold(strings.TrimSpace(reportTime), postMarket)

	base, reaction := -1, -1
	for i, p := range points {
		d := p.Time.Format(dayLayout)
		if afterClose {
			if d <= day {
				base = i
			} else if reaction < 0 {
				reaction = i
			}
			continue
		}
		if d < day {
			base = i
		} else if reaction < 0 {
			reaction = i
		}
	}
	if base < 0 || reaction < 0 {
		return nil
	}
	return movement(points[base], points[reaction])
}

// PreEarningsMovement is the change over the thirty days ending at the
// expected report date, or at today when that date is still ahead.
func PreEarningsMovement(points []alphavantage.Point, expectedDate string, now time.Time) *Movement {
	end := earnings.NormalizeDate(expectedDate)
	today := now.Format(dayLayout)
	if end == "" || end > today {
		end = today
	}
	endDay, err := time.Parse(dayLayout, end)
	if err != nil {
		return nil
	}
	start := endDay.AddDate(0, 0, -preEarningsDays).Format(dayLayout)

	first, last := -1, -1
	for i, p := range points {
		d := p.Time.Format(dayLayout)
		if d < start || d > end {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 || first == last {
		return nil
	}
	return movement(points[first], points[last])
}
