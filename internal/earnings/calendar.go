package earnings

import (
	"strings"
	"unicode"

	"github.com/nathanoyet/contra-ai/pkg/alphavantage"
)

type CalendarRow struct {
	Symbol           string
	Name             string
	ReportDate       string
	FiscalDateEnding string
	Currency         string
	EstimatedEPS     *string
	ReportedEPS      *string
}

type HistoricalEntry struct {
	FiscalDateEnding   string
	ReportedDate       string
	ReportTime         string
	ReportedEPS        *string
	EstimatedEPS       *string
	Surprise           *string
	SurprisePercentage *string
}

// Date is the entry's normalized report date, or its fiscal date when the
// report date is missing.
func (h HistoricalEntry) Date() string {
	if d := NormalizeDate(h.ReportedDate); d != "" {
		return d
	}
	return NormalizeDate(h.FiscalDateEnding)
}

// Header aliases are compared after lowercasing and dropping
// non-alphanumerics, so "reportDate", "report_date" and "Report Date" match.
var (
	symbolAliases   = []string{"symbol", "ticker"}
	nameAliases     = []string{"name", "companyname", "company"}
	reportAliases   = []string{"reportdate", "earningsdate", "announcementdate", "date"}
	fiscalAliases   = []string{"fiscaldateending", "fiscaldate", "fiscalperiodend", "periodending"}
	estimateAliases = []string{"estimate", "estimatedeps", "epsestimate", "consensuseps", "consensus", "epsforecast"}
	reportedAliases = []string{"reportedeps", "actualeps", "epsactual"}
	currencyAliases = []string{"currency"}
)

func headerKey(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func columnIndex(header []string, aliases []string) int {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = headerKey(h)
	}
	for _, alias := range aliases {
		for i, k := range keys {
			if k == alias {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ParseCalendar maps a calendar CSV onto rows using the header to locate
// columns. Rows with neither a report date nor a fiscal date are dropped.
func ParseCalendar(table *alphavantage.CSVTable) []CalendarRow {
	if table == nil || len(table.Header) == 0 {
		return nil
	}

	var (
		symbolIdx   = columnIndex(table.Header, symbolAliases)
		nameIdx     = columnIndex(table.Header, nameAliases)
		reportIdx   = columnIndex(table.Header, reportAliases)
		fiscalIdx   = columnIndex(table.Header, fiscalAliases)
		estimateIdx = columnIndex(table.Header, estimateAliases)
		reportedIdx = columnIndex(table.Header, reportedAliases)
		currencyIdx = columnIndex(table.Header, currencyAliases)
	)

	rows := make([]CalendarRow, 0, len(table.Rows))
	for _, r := range table.Rows {
		row := CalendarRow{
			Symbol:           strings.ToUpper(cell(r, symbolIdx)),
			Name:             cell(r, nameIdx),
			ReportDate:       cell(r, reportIdx),
			FiscalDateEnding: cell(r, fiscalIdx),
			Currency:         cell(r, currencyIdx),
			EstimatedEPS:     alphavantage.Value(cell(r, estimateIdx)),
			ReportedEPS:      alphavantage.Value(cell(r, reportedIdx)),
		}
		if NormalizeDate(row.ReportDate) == "" && NormalizeDate(row.FiscalDateEnding) == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// HistoryFromAlphaVantage converts the quarterly earnings feed.
func HistoryFromAlphaVantage(resp *alphavantage.EarningsResponse) []HistoricalEntry {
	if resp == nil {
		return nil
	}
	entries := make([]HistoricalEntry, 0, len(resp.QuarterlyEarnings))
	for _, q := range resp.QuarterlyEarnings {
		entries = append(entries, HistoricalEntry{
			FiscalDateEnding:   q.FiscalDateEnding,
			ReportedDate:       q.ReportedDate,
			ReportTime:         q.ReportTime,
			ReportedEPS:        alphavantage.Value(q.ReportedEPS),
			EstimatedEPS:       alphavantage.Value(q.EstimatedEPS),
			Surprise:           alphavantage.Value(q.Surprise),
			SurprisePercentage: alphavantage.Value(q.SurprisePercentage),
		})
	}
	return entries
}
