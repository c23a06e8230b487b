package insight

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nathanoyet/contra-ai/pkg/alphavantage"
	"github.com/shopspring/decimal"
)

// NotAvailable replaces any summary whose input is missing or malformed.
const NotAvailable = "Not available"

const (
	maxNewsItems       = 10
	newsExcerptRunes   = 200
	descriptionRunes   = 500
	maxQuarters        = 8
	maxAnnual          = 4
	rollupMonths       = 36
	newsTimeLayout     = "20060102T150405"
	newsDisplayLayout  = "2006-01-02 15:04"
	monthKeyLayout     = "2006-01"
	priceDisplayPlaces = 2
)

var overviewFields = []string{
	"Name",
	"Description",
	"Sector",
	"Industry",
	"MarketCapitalization",
	"PERatio",
	"EPS",
	"ProfitMargin",
	"QuarterlyEarningsGrowthYOY",
	"QuarterlyRevenueGrowthYOY",
	"AnalystTargetPrice",
	"52WeekHigh",
	"52WeekLow",
}

const ellipsis = "..."

// truncate caps s at n runes, ellipsis included.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= len(ellipsis) {
		return string(runes[:n])
	}
	return string(runes[:n-len(ellipsis)]) + ellipsis
}

func SummarizeNews(p Payload) string {
	if !p.OK() {
		return NotAvailable
	}
	var resp alphavantage.NewsResponse
	if err := json.Unmarshal(p.Raw, &resp); err != nil || len(resp.Feed) == 0 {
		return NotAvailable
	}

	items := resp.Feed
	if len(items) > maxNewsItems {
		items = items[:maxNewsItems]
	}

	var sb strings.Builder
	for i, item := range items {
		published := item.TimePublished
		if t, err := time.Parse(newsTimeLayout, item.TimePublished); err == nil {
			published = t.Format(newsDisplayLayout)
		}
		fmt.Fprintf(&sb, "%d. [%s] %s (sentiment: %s, %.3f)\n", i+1, published, strings.TrimSpace(item.Title), item.OverallSentimentLabel, item.OverallSentimentScore)
		if excerpt := truncate(item.Summary, newsExcerptRunes); excerpt != "" {
			fmt.Fprintf(&sb, "   %s\n", excerpt)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func SummarizeOverview(p Payload) string {
	if !p.OK() {
		return NotAvailable
	}
	var overview alphavantage.Overview
	if err := json.Unmarshal(p.Raw, &overview); err != nil || len(overview) == 0 {
		return NotAvailable
	}

	var lines []string
	for _, field := range overviewFields {
		value := strings.TrimSpace(overview[field])
		if alphavantage.Value(value) == nil {
			continue
		}
		if field == "Description" {
			value = truncate(value, descriptionRunes)
		}
		lines = append(lines, field+": "+value)
	}
	if len(lines) == 0 {
		return NotAvailable
	}
	return strings.Join(lines, "\n")
}

func SummarizeEarnings(p Payload) string {
	if !p.OK() {
		return NotAvailable
	}
	var resp alphavantage.EarningsResponse
	if err := json.Unmarshal(p.Raw, &resp); err != nil {
		return NotAvailable
	}
	if len(resp.QuarterlyEarnings) == 0 && len(resp.AnnualEarnings) == 0 {
		return NotAvailable
	}

	quarters := resp.QuarterlyEarnings
	if len(quarters) > maxQuarters {
		quarters = quarters[:maxQuarters]
	}
	annual := resp.AnnualEarnings
	if len(annual) > maxAnnual {
		annual = annual[:maxAnnual]
	}

	var sb strings.Builder
	sb.WriteString("Quarterly:\n")
	for _, q := range quarters {
		fmt.Fprintf(&sb, "- %s: reported EPS %s, surprise %s (%s%%)\n",
			q.FiscalDateEnding, orNA(q.ReportedEPS), orNA(q.Surprise), orNA(q.SurprisePercentage))
	}
	sb.WriteString("Annual:\n")
	for _, a := range annual {
		fmt.Fprintf(&sb, "- %s: reported EPS %s\n", a.FiscalDateEnding, orNA(a.ReportedEPS))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func orNA(s string) string {
	if v := alphavantage.Value(s); v != nil {
		return *v
	}
	return "n/a"
}

// Month is one monthly rollup of daily bars.
type Month struct {
	Month string
	High  float64
	Low   float64
	Close float64
}

// MonthlyRollup collapses points into calendar months, processing them in
// the order given: high is the max, low the min and close the last close
// seen for each month. Months come back in order of first appearance.
func MonthlyRollup(points []alphavantage.Point) []Month {
	index := make(map[string]int)
	var months []Month
	for _, p := range points {
		key := p.Time.Format(monthKeyLayout)
		i, ok := index[key]
		if !ok {
			index[key] = len(months)
			months = append(months, Month{Month: key, High: p.High, Low: p.Low, Close: p.Close})
			continue
		}
		m := &months[i]
		if p.High > m.High {
			m.High = p.High
		}
		if p.Low < m.Low {
			m.Low = p.Low
		}
		m.Close = p.Close
	}
	return months
}

// trailingMonths keeps the months falling within the last n calendar months
// ending at now, in chronological order.
func trailingMonths(months []Month, n int, now time.Time) []Month {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(n - 1), 0).Format(monthKeyLayout)
	last := now.Format(monthKeyLayout)
	var out []Month
	for _, m := range months {
		if m.Month >= first && m.Month <= last {
			out = append(out, m)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

func dailyPoints(p Payload) ([]alphavantage.Point, bool) {
	if !p.OK() {
		return nil, false
	}
	var ts alphavantage.TimeSeries
	if err := json.Unmarshal(p.Raw, &ts); err != nil {
		return nil, false
	}
	points := ts.Points()
	return points, len(points) > 0
}

func SummarizePrices(p Payload, now time.Time) string {
	points, ok := dailyPoints(p)
	if !ok {
		return NotAvailable
	}
	months := trailingMonths(MonthlyRollup(points), rollupMonths, now)
	if len(months) == 0 {
		return NotAvailable
	}

	var sb strings.Builder
	for _, m := range months {
		fmt.Fprintf(&sb, "%s: high %s, low %s, close %s\n", m.Month, price(m.High), price(m.Low), price(m.Close))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func price(f float64) string {
	return decimal.NewFromFloat(f).StringFixed(priceDisplayPlaces)
}

func decodeQuote(p Payload) (*alphavantage.Quote, bool) {
	if !p.OK() {
		return nil, false
	}
	var resp struct {
		Quote alphavantage.Quote `json:"Global Quote"`
	}
	if err := json.Unmarshal(p.Raw, &resp); err != nil || alphavantage.Value(resp.Quote.Price) == nil {
		return nil, false
	}
	return &resp.Quote, true
}

func SummarizeQuote(p Payload) string {
	q, ok := decodeQuote(p)
	if !ok {
		return NotAvailable
	}
	return fmt.Sprintf("Price %s, change %s (%s), previous close %s, volume %s, as of %s",
		orNA(q.Price), orNA(q.Change), orNA(q.ChangePercent), orNA(q.PreviousClose), orNA(q.Volume), orNA(q.LatestTradingDay))
}
