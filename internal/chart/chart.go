package chart

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nathanoyet/contra-ai/pkg/alphavantage"
)

type Range string

const (
	Range1D Range = "1d"
	Range1W Range = "1w"
	Range1M Range = "1m"
	Range6M Range = "6m"
	Range1Y Range = "1y"
	Range3Y Range = "3y"
)

const DefaultRange = Range6M

type granularity struct {
	intraday   bool
	interval   string
	outputSize string
	start      func(end time.Time) time.Time
}

var granularities = map[Range]granularity{
	Range1D: {intraday: true, interval: "5min", outputSize: alphavantage.OutputFull, start: func(t time.Time) time.Time { return t.AddDate(0, 0, -1) }},
	Range1W: {intraday: true, interval: "30min", outputSize: alphavantage.OutputFull, start: func(t time.Time) time.Time { return t.AddDate(0, 0, -7) }},
	Range1M: {interval: "daily", outputSize: alphavantage.OutputCompact, start: func(t time.Time) time.Time { return t.AddDate(0, -1, 0) }},
	Range6M: {interval: "daily", outputSize: alphavantage.OutputFull, start: func(t time.Time) time.Time { return t.AddDate(0, -6, 0) }},
	Range1Y: {interval: "daily", outputSize: alphavantage.OutputFull, start: func(t time.Time) time.Time { return t.AddDate(-1, 0, 0) }},
	Range3Y: {interval: "daily", outputSize: alphavantage.OutputFull, start: func(t time.Time) time.Time { return t.AddDate(-3, 0, 0) }},
}

func ParseRange(s string) (Range, error) {
	r := Range(strings.ToLower(strings.TrimSpace(s)))
	if r == "" {
		return DefaultRange, nil
	}
	if _, ok := granularities[r]; !ok {
		return "", fmt.Errorf("unsupported range %q", s)
	}
	return r, nil
}

// Intraday reports whether r is served from intraday bars.
func (r Range) Intraday() bool {
	return granularities[r].intraday
}

type Source interface {
	DailySeries(ctx context.Context, symbol, outputSize string) (*alphavantage.TimeSeries, error)
	IntradaySeries(ctx context.Context, symbol, interval, outputSize string) (*alphavantage.TimeSeries, error)
}

type Series struct {
	Ticker   string               `json:"ticker"`
	Range    Range                `json:"range"`
	Interval string               `json:"interval"`
	Intraday bool                 `json:"intraday"`
	Start    time.Time            `json:"start"`
	End      time.Time            `json:"end"`
	Points   []alphavantage.Point `json:"points"`
}

type Builder struct {
	source Source
	now    func() time.Time
}

func NewBuilder(source Source) *Builder {
	return &Builder{source: source, now: time.Now}
}

// WithClock replaces the builder clock.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Series fetches the feed for r and keeps the points inside [now-r, now],
// ascending. An intraday window that holds no bars (market closed) is
// re-anchored to end at the last available bar.
func (b *Builder) Series(ctx context.Context, ticker string, r Range) (*Series, error) {
	g, ok := granularities[r]
	if !ok {
		return nil, fmt.Errorf("unsupported range %q", r)
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	var (
		ts  *alphavantage.TimeSeries
		err error
	)
	if g.intraday {
		ts, err = b.source.IntradaySeries(ctx, ticker, g.interval, g.outputSize)
	} else {
		ts, err = b.source.DailySeries(ctx, ticker, g.outputSize)
	}
	if err != nil {
		return nil, fmt.Errorf("chart %s %s: %w", ticker, r, err)
	}

	all := ts.Points()
	end := b.now()
	start := g.start(end)
	points := Window(all, start, end)

	if len(points) == 0 && g.intraday && len(all) > 0 {
		end = all[len(all)-1].Time
		start = g.start(end)
		points = Window(all, start, end)
	}

	return &Series{
		Ticker:   ticker,
		Range:    r,
		Interval: g.interval,
		Intraday: g.intraday,
		Start:    start,
		End:      end,
		Points:   points,
	}, nil
}

// Window returns the points with start <= time <= end, sorted ascending.
func Window(points []alphavantage.Point, start, end time.Time) []alphavantage.Point {
	out := make([]alphavantage.Point, 0, len(points))
	for _, p := range points {
		if p.Time.Before(start) || p.Time.After(end) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out
}
