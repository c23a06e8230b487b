package earnings

import (
	"sort"
	"strings"
	"time"
)

const (
	SourceCalendar = "calendar"
	SourceHistory  = "history"

	nearestReportDays = 5
	estimateLookback  = 90
)

type Event struct {
	Ticker             string  `json:"ticker"`
	Name               string  `json:"name,omitempty"`
	Date               string  `json:"date"`
	ReportDate         string  `json:"report_date,omitempty"`
	FiscalDateEnding   string  `json:"fiscal_date_ending,omitempty"`
	FiscalPeriod       string  `json:"fiscal_period"`
	ReportTime         string  `json:"report_time,omitempty"`
	Currency           string  `json:"currency,omitempty"`
	EstimatedEPS       *string `json:"estimated_eps"`
	ReportedEPS        *string `json:"reported_eps"`
	Surprise           *string `json:"surprise"`
	SurprisePercentage *string `json:"surprise_percentage"`
	IsPast             bool    `json:"is_past"`
	Source             string  `json:"source"`
}

// backfill copies fields from h that ev does not already have.
func (ev *Event) backfill(h *HistoricalEntry) {
	if ev.EstimatedEPS == nil {
		ev.EstimatedEPS = h.EstimatedEPS
	}
	if ev.ReportedEPS == nil {
		ev.ReportedEPS = h.ReportedEPS
	}
	if ev.Surprise == nil {
		ev.Surprise = h.Surprise
	}
	if ev.SurprisePercentage == nil {
		ev.SurprisePercentage = h.SurprisePercentage
	}
	if ev.ReportTime == "" {
		ev.ReportTime = h.ReportTime
	}
	if ev.FiscalDateEnding == "" {
		ev.FiscalDateEnding = NormalizeDate(h.FiscalDateEnding)
	}
	if ev.ReportDate == "" {
		ev.ReportDate = NormalizeDate(h.ReportedDate)
	}
}

// merge fills every empty field of ev from other.
func (ev *Event) merge(other Event) {
	if ev.Name == "" {
		ev.Name = other.Name
	}
	if ev.ReportDate == "" {
		ev.ReportDate = other.ReportDate
	}
	if ev.FiscalDateEnding == "" {
		ev.FiscalDateEnding = other.FiscalDateEnding
	}
	if ev.FiscalPeriod == "" {
		ev.FiscalPeriod = other.FiscalPeriod
	}
	if ev.ReportTime == "" {
		ev.ReportTime = other.ReportTime
	}
	if ev.Currency == "" {
		ev.Currency = other.Currency
	}
	if ev.EstimatedEPS == nil {
		ev.EstimatedEPS = other.EstimatedEPS
	}
	if ev.ReportedEPS == nil {
		ev.ReportedEPS = other.ReportedEPS
	}
	if ev.Surprise == nil {
		ev.Surprise = other.Surprise
	}
	if ev.SurprisePercentage == nil {
		ev.SurprisePercentage = other.SurprisePercentage
	}
}

type history struct {
	entries  []HistoricalEntry
	byReport map[string]int
	byFiscal map[string]int
	used     map[int]bool
}

func newHistory(entries []HistoricalEntry) *history {
	h := &history{
		entries:  entries,
		byReport: make(map[string]int, len(entries)),
		byFiscal: make(map[string]int, len(entries)),
		used:     make(map[int]bool),
	}
	for i, e := range entries {
		if d := NormalizeDate(e.ReportedDate); d != "" {
			if _, ok := h.byReport[d]; !ok {
				h.byReport[d] = i
			}
		}
		if d := NormalizeDate(e.FiscalDateEnding); d != "" {
			if _, ok := h.byFiscal[d]; !ok {
				h.byFiscal[d] = i
			}
		}
	}
	return h
}

// lookup finds an entry whose report or fiscal date equals date.
func (h *history) lookup(date string, reportFirst bool) (int, bool) {
	if date == "" {
		return 0, false
	}
	first, second := h.byReport, h.byFiscal
	if !reportFirst {
		first, second = h.byFiscal, h.byReport
	}
	if i, ok := first[date]; ok {
		return i, true
	}
	i, ok := second[date]
	return i, ok
}

func (h *history) nearest(date string, maxDays int) (int, bool) {
	best, bestDays := -1, maxDays+1
	for i, e := range h.entries {
		if e.ReportedEPS == nil {
			continue
		}
		d, ok := daysBetween(e.Date(), date)
		if !ok || d > maxDays {
			continue
		}
		if d < bestDays {
			best, bestDays = i, d
		}
	}
	return best, best >= 0
}

// latestEstimate returns the most recent entry carrying an estimate that is
// either future-dated or at most estimateLookback days old.
func (h *history) latestEstimate(now time.Time) (int, bool) {
	today := now.Format(dateLayout)
	best, bestDate := -1, ""
	for i, e := range h.entries {
		if e.EstimatedEPS == nil {
			continue
		}
		date := e.Date()
		if date == "" {
			continue
		}
		if date < today {
			if d, ok := daysBetween(date, today); !ok || d > estimateLookback {
				continue
			}
		}
		if date > bestDate {
			best, bestDate = i, date
		}
	}
	return best, best >= 0
}

// Reconcile merges the calendar feed with the historical feed for one ticker.
//
// For each calendar row the estimated/reported EPS come from, in order: the
// row itself; history matched on the row's report date; history matched on
// its fiscal date; for past events, the nearest history entry within five
// days; for future events, the latest usable historical estimate. History
// entries no calendar row claimed are emitted on their own. The result has
// one event per (date, ticker), calendar data first, sorted by date.
func Reconcile(ticker string, rows []CalendarRow, entries []HistoricalEntry, now time.Time) []Event {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	hist := newHistory(entries)

	var events []Event
	for _, row := range rows {
		if row.Symbol != "" && !strings.EqualFold(row.Symbol, ticker) {
			continue
		}

		reportDate := NormalizeDate(row.ReportDate)
		fiscalDate := NormalizeDate(row.FiscalDateEnding)
		date := reportDate
		if date == "" {
			date = fiscalDate
		}
		if date == "" {
			continue
		}

		ev := Event{
			Ticker:           ticker,
			Name:             row.Name,
			Date:             date,
			ReportDate:       reportDate,
			FiscalDateEnding: fiscalDate,
			FiscalPeriod:     FiscalLabel(date),
			Currency:         row.Currency,
			EstimatedEPS:     row.EstimatedEPS,
			ReportedEPS:      row.ReportedEPS,
			IsPast:           IsPast(date, now),
			Source:           SourceCalendar,
		}

		if i, ok := hist.lookup(reportDate, true); ok {
			ev.backfill(&hist.entries[i])
			hist.used[i] = true
		}
		if i, ok := hist.lookup(fiscalDate, false); ok {
			ev.backfill(&hist.entries[i])
			hist.used[i] = true
		}
		if ev.IsPast && ev.ReportedEPS == nil {
			if i, ok := hist.nearest(date, nearestReportDays); ok {
				ev.backfill(&hist.entries[i])
				hist.used[i] = true
			}
		}
		if !ev.IsPast && ev.EstimatedEPS == nil {
			if i, ok := hist.latestEstimate(now); ok {
				ev.EstimatedEPS = hist.entries[i].EstimatedEPS
			}
		}

		events = append(events, ev)
	}

	for i, e := range hist.entries {
		if hist.used[i] {
			continue
		}
		date := e.Date()
		if date == "" {
			continue
		}
		ev := Event{
			Ticker:       ticker,
			Date:         date,
			FiscalPeriod: FiscalLabel(date),
			IsPast:       IsPast(date, now),
			Source:       SourceHistory,
		}
		ev.backfill(&hist.entries[i])
		events = append(events, ev)
	}

	return Dedupe(events)
}

// Dedupe keeps one event per (date, ticker). Calendar events win over
// history events; the winner's missing fields are filled from the others.
func Dedupe(events []Event) []Event {
	type key struct{ date, ticker string }

	index := make(map[key]int, len(events))
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		k := key{ev.Date, strings.ToUpper(ev.Ticker)}
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			out = append(out, ev)
			continue
		}
		if out[i].Source != SourceCalendar && ev.Source == SourceCalendar {
			ev.merge(out[i])
			out[i] = ev
			continue
		}
		out[i].merge(ev)
	}

	sortEvents(out)
	return out
}

func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].Ticker < events[j].Ticker
	})
}

type Day struct {
	Date   string  `json:"date"`
	Events []Event `json:"events"`
}

// FilterMonth keeps events dated in year/month.
func FilterMonth(events []Event, year int, month time.Month) []Event {
	prefix := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
	var out []Event
	for _, ev := range events {
		if strings.HasPrefix(ev.Date, prefix) {
			out = append(out, ev)
		}
	}
	return out
}

// GroupByDay buckets events by date, in date order.
func GroupByDay(events []Event) []Day {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sortEvents(sorted)

	var days []Day
	for _, ev := range sorted {
		if n := len(days); n > 0 && days[n-1].Date == ev.Date {
			days[n-1].Events = append(days[n-1].Events, ev)
			continue
		}
		days = append(days, Day{Date: ev.Date, Events: []Event{ev}})
	}
	return days
}

// NextAndPrevious returns the earliest upcoming and the latest past event.
func NextAndPrevious(events []Event) (next, previous *Event) {
	for i := range events {
		ev := &events[i]
		if ev.IsPast {
			if previous == nil || ev.Date > previous.Date {
				previous = ev
			}
			continue
		}
		if next == nil || ev.Date < next.Date {
			next = ev
		}
	}
	return next, previous
}
