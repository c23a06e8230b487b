package earnings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nathanoyet/contra-ai/pkg/alphavantage"
)

const CalendarHorizon = "12month"

var ErrNoEvents = errors.New("no earnings events")

// Source is the subset of the market-data client the reconciler needs.
type Source interface {
	EarningsCalendar(ctx context.Context, symbol, horizon string) (*alphavantage.CSVTable, error)
	Earnings(ctx context.Context, symbol string) (*alphavantage.EarningsResponse, error)
}

type Service struct {
	source Source
	now    func() time.Time
}

func NewService(source Source) *Service {
	return &Service{source: source, now: time.Now}
}

// WithClock replaces the service clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Now() time.Time {
	return s.now()
}

// Events reconciles both feeds for ticker. One failing feed is tolerated;
// both failing returns the calendar error.
func (s *Service) Events(ctx context.Context, ticker string) ([]Event, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	var (
		wg      sync.WaitGroup
		table   *alphavantage.CSVTable
		hist    *alphavantage.EarningsResponse
		calErr  error
		histErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		table, calErr = s.source.EarningsCalendar(ctx, ticker, CalendarHorizon)
	}()
	go func() {
		defer wg.Done()
		hist, histErr = s.source.Earnings(ctx, ticker)
	}()
	wg.Wait()

	if calErr != nil && histErr != nil {
		return nil, fmt.Errorf("earnings feeds for %s: %w", ticker, calErr)
	}
	if calErr != nil {
		slog.Warn("earnings calendar unavailable, using history only", "ticker", ticker, "error", calErr)
	}
	if histErr != nil {
		slog.Warn("earnings history unavailable, using calendar only", "ticker", ticker, "error", histErr)
	}

	return Reconcile(ticker, ParseCalendar(table), HistoryFromAlphaVantage(hist), s.now()), nil
}

// Calendar reconciles every ticker and returns the events of year/month
// grouped by day. Tickers whose feeds fail are skipped.
func (s *Service) Calendar(ctx context.Context, tickers []string, year int, month time.Month) ([]Day, error) {
	type result struct {
		events []Event
		err    error
	}

	results := make([]result, len(tickers))
	var wg sync.WaitGroup
	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			events, err := s.Events(ctx, ticker)
			results[i] = result{events: events, err: err}
		}(i, ticker)
	}
	wg.Wait()

	var all []Event
	var firstErr error
	for i, r := range results {
		if r.err != nil {
			slog.Warn("skipping ticker in calendar", "ticker", tickers[i], "error", r.err)
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		all = append(all, FilterMonth(r.events, year, month)...)
	}

	if len(all) == 0 && firstErr != nil {
		return nil, firstErr
	}

	return GroupByDay(Dedupe(all)), nil
}

// Lookup returns the next and previous earnings events for ticker.
func (s *Service) Lookup(ctx context.Context, ticker string) (next, previous *Event, err error) {
	events, err := s.Events(ctx, ticker)
	if err != nil {
		return nil, nil, err
	}
	next, previous = NextAndPrevious(events)
	if next == nil && previous == nil {
		return nil, nil, ErrNoEvents
	}
	return next, previous, nil
}
