package earnings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/nathanoyet/contra-ai/pkg/alphavantage"
)

type fakeSource struct {
	mu       sync.Mutex
	calendar map[string]*alphavantage.CSVTable
	history  map[string]*alphavantage.EarningsResponse
	calErr   error
	histErr  error
	calls    []string
}

func (f *fakeSource) EarningsCalendar(_ context.Context, symbol, horizon string) (*alphavantage.CSVTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "calendar:"+symbol+":"+horizon)
	if f.calErr != nil {
		return nil, f.calErr
	}
	return f.calendar[symbol], nil
}

func (f *fakeSource) Earnings(_ context.Context, symbol string) (*alphavantage.EarningsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "history:"+symbol)
	if f.histErr != nil {
		return nil, f.histErr
	}
	return f.history[symbol], nil
}

func calendarTable(rows ...[]string) *alphavantage.CSVTable {
	return &alphavantage.CSVTable{
		Header: []string{"symbol", "name", "reportDate", "fiscalDateEnding", "estimate", "currency"},
		Rows:   rows,
	}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		calendar: map[string]*alphavantage.CSVTable{
			"AAPL": calendarTable([]string{"AAPL", "Apple Inc", "2025-05-01", "2025-03-31", "1.62", "USD"}),
			"MSFT": calendarTable([]string{"MSFT", "Microsoft Corp", "2025-04-29", "2025-03-31", "3.22", "USD"}),
		},
		history: map[string]*alphavantage.EarningsResponse{
			"AAPL": {
				Symbol: "AAPL",
				QuarterlyEarnings: []alphavantage.QuarterlyEarning{
					{FiscalDateEnding: "2024-12-31", ReportedDate: "2025-01-30", ReportedEPS: "2.40", EstimatedEPS: "2.35", Surprise: "0.05", SurprisePercentage: "2.1277", ReportTime: "post-market"},
					{FiscalDateEnding: "2024-09-30", ReportedDate: "2024-10-31", ReportedEPS: "1.64", EstimatedEPS: "1.60", Surprise: "0.04", SurprisePercentage: "2.5", ReportTime: "post-market"},
				},
			},
			"MSFT": {
				Symbol: "MSFT",
				QuarterlyEarnings: []alphavantage.QuarterlyEarning{
					{FiscalDateEnding: "2024-12-31", ReportedDate: "2025-01-29", ReportedEPS: "3.23", EstimatedEPS: "3.11", Surprise: "0.12", SurprisePercentage: "3.8585", ReportTime: "post-market"},
				},
			},
		},
	}
}

func fixedClock() time.Time { return testNow }

func TestServiceEvents(t *testing.T) {
	src := newFakeSource()
	svc := NewService(src).WithClock(fixedClock)

	events, err := svc.Events(context.Background(), " aapl ")

	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(events))
	assert.Equal(t, "2024-10-31", events[0].Date)
	assert.Equal(t, "2025-01-30", events[1].Date)
	assert.Equal(t, "2025-05-01", events[2].Date)
	assert.Equal(t, SourceCalendar, events[2].Source)
	assert.Equal(t, false, events[2].IsPast)
	assert.Equal(t, 2, len(src.calls))
}

func TestServiceEventsToleratesOneFeed(t *testing.T) {
	t.Run("calendar down", func(t *testing.T) {
		src := newFakeSource()
		src.calErr = errors.New("rate limited")
		svc := NewService(src).WithClock(fixedClock)

		events, err := svc.Events(context.Background(), "AAPL")

		assert.Equal(t, nil, err)
		assert.Equal(t, 2, len(events))
		for _, ev := range events {
			assert.Equal(t, SourceHistory, ev.Source)
		}
	})

	t.Run("history down", func(t *testing.T) {
		src := newFakeSource()
		src.histErr = errors.New("timeout")
		svc := NewService(src).WithClock(fixedClock)

		events, err := svc.Events(context.Background(), "AAPL")

		assert.Equal(t, nil, err)
		assert.Equal(t, 1, len(events))
		assert.Equal(t, "1.62", *events[0].EstimatedEPS)
	})

	t.Run("both down", func(t *testing.T) {
		src := newFakeSource()
		src.calErr = errors.New("rate limited")
		src.histErr = errors.New("timeout")
		svc := NewService(src).WithClock(fixedClock)

		_, err := svc.Events(context.Background(), "AAPL")

		assert.NotEqual(t, nil, err)
		assert.Equal(t, true, errors.Is(err, src.calErr))
	})
}

func TestServiceCalendar(t *testing.T) {
	svc := NewService(newFakeSource()).WithClock(fixedClock)

	days, err := svc.Calendar(context.Background(), []string{"AAPL", "MSFT"}, 2025, time.January)

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(days))
	assert.Equal(t, "2025-01-29", days[0].Date)
	assert.Equal(t, "MSFT", days[0].Events[0].Ticker)
	assert.Equal(t, "2025-01-30", days[1].Date)
	assert.Equal(t, "AAPL", days[1].Events[0].Ticker)
	assert.Equal(t, "2.40", *days[1].Events[0].ReportedEPS)
}

func TestServiceCalendarAllFailing(t *testing.T) {
	src := newFakeSource()
	src.calErr = errors.New("down")
	src.histErr = errors.New("down")
	svc := NewService(src).WithClock(fixedClock)

	days, err := svc.Calendar(context.Background(), []string{"AAPL"}, 2025, time.January)

	assert.NotEqual(t, nil, err)
	assert.Equal(t, 0, len(days))
}

func TestServiceLookup(t *testing.T) {
	svc := NewService(newFakeSource()).WithClock(fixedClock)

	next, previous, err := svc.Lookup(context.Background(), "MSFT")

	assert.Equal(t, nil, err)
	assert.Equal(t, "2025-04-29", next.Date)
	assert.Equal(t, "3.22", *next.EstimatedEPS)
	assert.Equal(t, "2025-01-29", previous.Date)
	assert.Equal(t, "3.23", *previous.ReportedEPS)
}

func TestServiceLookupNoEvents(t *testing.T) {
	src := &fakeSource{}
	svc := NewService(src).WithClock(fixedClock)

	_, _, err := svc.Lookup(context.Background(), "ZZZZ")

	assert.Equal(t, ErrNoEvents, err)
}
