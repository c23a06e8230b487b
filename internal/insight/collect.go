package insight

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nathanoyet/contra-ai/internal/status"
	"github.com/nathanoyet/contra-ai/pkg/alphavantage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/nathanoyet/contra-ai/internal/insight")

const newsLimit = 50

// Source is the market-data surface the collector reads.
type Source interface {
	OverviewRaw(ctx context.Context, symbol string) (json.RawMessage, error)
	NewsSentimentRaw(ctx context.Context, symbol string, limit int) (json.RawMessage, error)
	EarningsRaw(ctx context.Context, symbol string) (json.RawMessage, error)
	DailySeriesRaw(ctx context.Context, symbol, outputSize string) (json.RawMessage, error)
	GlobalQuoteRaw(ctx context.Context, symbol string) (json.RawMessage, error)
}

// Payload is one provider response: either the raw body or the error that
// replaced it. Exactly one of the two is set.
type Payload struct {
	Raw json.RawMessage
	Err *alphavantage.ProviderError
}

func (p Payload) OK() bool {
	return p.Err == nil && len(p.Raw) > 0
}

func newPayload(function string, raw json.RawMessage, err error) Payload {
	if err != nil {
		return Payload{Err: alphavantage.AsProviderError(function, err)}
	}
	return Payload{Raw: raw}
}

type Bundle struct {
	Ticker   string
	Overview Payload
	News     Payload
	Earnings Payload
	Daily    Payload
	Quote    Payload
}

// Errors lists the failed payloads, for logging.
func (b *Bundle) Errors() []*alphavantage.ProviderError {
	var errs []*alphavantage.ProviderError
	for _, p := range []Payload{b.Overview, b.News, b.Earnings, b.Daily, b.Quote} {
		if p.Err != nil {
			errs = append(errs, p.Err)
		}
	}
	return errs
}

type step struct {
	status   string
	function string
	fetch    func(ctx context.Context) (json.RawMessage, error)
	into     *Payload
}

func steps(src Source, ticker string, b *Bundle) []step {
	return []step{
		{
			status:   "Fetching company overview...",
			function: alphavantage.FunctionOverview,
			fetch:    func(ctx context.Context) (json.RawMessage, error) { return src.OverviewRaw(ctx, ticker) },
			into:     &b.Overview,
		},
		{
			status:   "Fetching news and sentiment...",
			function: alphavantage.FunctionNewsSentiment,
			fetch: func(ctx context.Context) (json.RawMessage, error) {
				return src.NewsSentimentRaw(ctx, ticker, newsLimit)
			},
			into: &b.News,
		},
		{
			status:   "Fetching earnings history...",
			function: alphavantage.FunctionEarnings,
			fetch:    func(ctx context.Context) (json.RawMessage, error) { return src.EarningsRaw(ctx, ticker) },
			into:     &b.Earnings,
		},
		{
			status:   "Fetching price history...",
			function: alphavantage.FunctionDaily,
			fetch: func(ctx context.Context) (json.RawMessage, error) {
				return src.DailySeriesRaw(ctx, ticker, alphavantage.OutputFull)
			},
			into: &b.Daily,
		},
		{
			status:   "Fetching latest quote...",
			function: alphavantage.FunctionGlobalQuote,
			fetch:    func(ctx context.Context) (json.RawMessage, error) { return src.GlobalQuoteRaw(ctx, ticker) },
			into:     &b.Quote,
		},
	}
}

// Collect issues the five provider calls concurrently. Failures are kept in
// the bundle; Collect itself never fails.
func Collect(ctx context.Context, src Source, ticker string) *Bundle {
	ctx, span := tracer.Start(ctx, "insight.collect")
	defer span.End()
	span.SetAttributes(attribute.String("ticker", ticker))

	b := &Bundle{Ticker: ticker}
	var wg sync.WaitGroup
	for _, s := range steps(src, ticker, b) {
		wg.Add(1)
		go func(s step) {
			defer wg.Done()
			raw, err := s.fetch(ctx)
			*s.into = newPayload(s.function, raw, err)
		}(s)
	}
	wg.Wait()

	logFailures(b)
	return b
}

// CollectWithStatus issues the same calls one after another, publishing a
// status line before each so a polling client can follow progress.
func CollectWithStatus(ctx context.Context, src Source, store status.Store, requestID, ticker string) *Bundle {
	ctx, span := tracer.Start(ctx, "insight.collect_with_status")
	defer span.End()
	span.SetAttributes(attribute.String("ticker", ticker))

	b := &Bundle{Ticker: ticker}
	for _, s := range steps(src, ticker, b) {
		setStatus(ctx, store, requestID, s.status)
		raw, err := s.fetch(ctx)
		*s.into = newPayload(s.function, raw, err)
	}

	logFailures(b)
	return b
}

func setStatus(ctx context.Context, store status.Store, requestID, message string) {
	if store == nil || requestID == "" {
		return
	}
	if err := store.Set(ctx, requestID, message); err != nil {
		slog.Warn("failed to set request status", "request_id", requestID, "error", err)
	}
}

func logFailures(b *Bundle) {
	for _, err := range b.Errors() {
		slog.Warn("provider call failed", "ticker", b.Ticker, "function", err.Function, "kind", err.Kind, "error", err.Message)
	}
}
