package insight

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nathanoyet/contra-ai/internal/earnings"
	"github.com/nathanoyet/contra-ai/pkg/alphavantage"
	"github.com/nathanoyet/contra-ai/pkg/llm"
)

type Mode string

const (
	ModeGeneral     Mode = "general"
	ModeEvent       Mode = "event"
	ModePreEarnings Mode = "pre_earnings"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeGeneral:
		return ModeGeneral, nil
	case ModeEvent:
		return ModeEvent, nil
	case ModePreEarnings:
		return ModePreEarnings, nil
	}
	return "", fmt.Errorf("unknown analysis mode %q", s)
}

// SystemPrompt returns the persona for mode.
func (m Mode) SystemPrompt() string {
	switch m {
	case ModeEvent:
		return llm.EventPrompt
	case ModePreEarnings:
		return llm.PreEarningsPrompt
	}
	return llm.AnalystPrompt
}

type Request struct {
	Ticker       string
	Mode         Mode
	FiscalPeriod string
	ReportDate   string
	ExpectedDate string
	EstimatedEPS string
}

// findQuarter locates the historical quarter for an event: equal report date
// first, then equal fiscal date, then the fiscal label.
func findQuarter(p Payload, reportDate, fiscalPeriod string) *alphavantage.QuarterlyEarning {
	if !p.OK() {
		return nil
	}
	var resp alphavantage.EarningsResponse
	if err := json.Unmarshal(p.Raw, &resp); err != nil {
		return nil
	}

	target := earnings.NormalizeDate(reportDate)
	if target != "" {
		for i, q := range resp.QuarterlyEarnings {
			if earnings.NormalizeDate(q.ReportedDate) == target {
				return &resp.QuarterlyEarnings[i]
			}
		}
		for i, q := range resp.QuarterlyEarnings {
			if earnings.NormalizeDate(q.FiscalDateEnding) == target {
				return &resp.QuarterlyEarnings[i]
			}
		}
	}
	if fiscalPeriod != "" {
		for i, q := range resp.QuarterlyEarnings {
			date := q.ReportedDate
			if earnings.NormalizeDate(date) == "" {
				date = q.FiscalDateEnding
			}
			if strings.EqualFold(earnings.FiscalLabel(date), fiscalPeriod) {
				return &resp.QuarterlyEarnings[i]
			}
		}
	}
	return nil
}

func describeMovement(m *Movement) string {
	if m == nil {
		return NotAvailable
	}
	return m.String()
}

// BuildContext renders the human turn handed to the model. Output is
// deterministic for a given bundle, request and clock.
func BuildContext(req Request, b *Bundle, now time.Time) string {
	points, _ := dailyPoints(b.Daily)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Ticker: %s\n", strings.ToUpper(req.Ticker))
	fmt.Fprintf(&sb, "Date: %s\n", now.Format(dayLayout))

	switch req.Mode {
	case ModeEvent:
		fmt.Fprintf(&sb, "Fiscal period under review: %s\n", orDefault(req.FiscalPeriod, NotAvailable))
		fmt.Fprintf(&sb, "Report date: %s\n", orDefault(earnings.NormalizeDate(req.ReportDate), NotAvailable))
		q := findQuarter(b.Earnings, req.ReportDate, req.FiscalPeriod)
		reportTime := ""
		if q != nil {
			reportTime = q.ReportTime
			fmt.Fprintf(&sb, "Matching earnings entry: fiscal date %s, reported %s (%s), reported EPS %s, estimated EPS %s, surprise %s (%s%%)\n",
				q.FiscalDateEnding, q.ReportedDate, orNA(q.ReportTime), orNA(q.ReportedEPS), orNA(q.EstimatedEPS), orNA(q.Surprise), orNA(q.SurprisePercentage))
		} else {
			fmt.Fprintf(&sb, "Matching earnings entry: %s\n", NotAvailable)
		}
		reportDate := req.ReportDate
		if reportDate == "" && q != nil {
			reportDate = q.ReportedDate
		}
		fmt.Fprintf(&sb, "Price reaction: %s\n", describeMovement(EventMovement(points, reportDate, reportTime)))
	case ModePreEarnings:
		fmt.Fprintf(&sb, "Expected report date: %s\n", orDefault(earnings.NormalizeDate(req.ExpectedDate), NotAvailable))
		fmt.Fprintf(&sb, "Consensus EPS estimate: %s\n", orDefault(req.EstimatedEPS, NotAvailable))
		fmt.Fprintf(&sb, "30-day price change: %s\n", describeMovement(PreEarningsMovement(points, req.ExpectedDate, now)))
	default:
		fmt.Fprintf(&sb, "Latest price movement: %s\n", describeMovement(LatestMovement(points)))
	}

	section(&sb, "Company overview", SummarizeOverview(b.Overview))
	section(&sb, "Recent news", SummarizeNews(b.News))
	section(&sb, "Earnings history", SummarizeEarnings(b.Earnings))
	section(&sb, "Monthly price history (last 36 months)", SummarizePrices(b.Daily, now))
	section(&sb, "Latest quote", SummarizeQuote(b.Quote))

	return strings.TrimRight(sb.String(), "\n")
}

func section(sb *strings.Builder, title, body string) {
	fmt.Fprintf(sb, "\n## %s\n%s\n", title, body)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
