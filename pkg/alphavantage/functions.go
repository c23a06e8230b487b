package alphavantage

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/url"
	"strconv"
)

const (
	FunctionOverview         = "OVERVIEW"
	FunctionNewsSentiment    = "NEWS_SENTIMENT"
	FunctionEarnings         = "EARNINGS"
	FunctionDaily            = "TIME_SERIES_DAILY"
	FunctionIntraday         = "TIME_SERIES_INTRADAY"
	FunctionGlobalQuote      = "GLOBAL_QUOTE"
	FunctionSymbolSearch     = "SYMBOL_SEARCH"
	FunctionEarningsCalendar = "EARNINGS_CALENDAR"
)

const (
	OutputCompact = "compact"
	OutputFull    = "full"
)

func (c *Client) OverviewRaw(ctx context.Context, symbol string) (json.RawMessage, error) {
	return c.Fetch(ctx, FunctionOverview, symbolParams(symbol))
}

func (c *Client) NewsSentimentRaw(ctx context.Context, symbol string, limit int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("tickers", symbol)
	params.Set("sort", "LATEST")
	params.Set("limit", strconv.Itoa(limit))
	return c.Fetch(ctx, FunctionNewsSentiment, params)
}

func (c *Client) EarningsRaw(ctx context.Context, symbol string) (json.RawMessage, error) {
	return c.Fetch(ctx, FunctionEarnings, symbolParams(symbol))
}

func (c *Client) DailySeriesRaw(ctx context.Context, symbol, outputSize string) (json.RawMessage, error) {
	params := symbolParams(symbol)
	params.Set("outputsize", outputSize)
	return c.Fetch(ctx, FunctionDaily, params)
}

func (c *Client) GlobalQuoteRaw(ctx context.Context, symbol string) (json.RawMessage, error) {
	return c.Fetch(ctx, FunctionGlobalQuote, symbolParams(symbol))
}

func (c *Client) Overview(ctx context.Context, symbol string) (Overview, error) {
	raw, err := c.OverviewRaw(ctx, symbol)
	if err != nil {
		return nil, err
	}
	out, err := decode[Overview](FunctionOverview, raw)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

func (c *Client) NewsSentiment(ctx context.Context, symbol string, limit int) (*NewsResponse, error) {
	raw, err := c.NewsSentimentRaw(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}
	return decode[NewsResponse](FunctionNewsSentiment, raw)
}

func (c *Client) Earnings(ctx context.Context, symbol string) (*EarningsResponse, error) {
	raw, err := c.EarningsRaw(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return decode[EarningsResponse](FunctionEarnings, raw)
}

func (c *Client) DailySeries(ctx context.Context, symbol, outputSize string) (*TimeSeries, error) {
	raw, err := c.DailySeriesRaw(ctx, symbol, outputSize)
	if err != nil {
		return nil, err
	}
	return decode[TimeSeries](FunctionDaily, raw)
}

// IntradaySeries fetches bars at interval ("1min", "5min", "15min", "30min", "60min").
func (c *Client) IntradaySeries(ctx context.Context, symbol, interval, outputSize string) (*TimeSeries, error) {
	params := symbolParams(symbol)
	params.Set("interval", interval)
	params.Set("outputsize", outputSize)
	raw, err := c.Fetch(ctx, FunctionIntraday, params)
	if err != nil {
		return nil, err
	}
	return decode[TimeSeries](FunctionIntraday, raw)
}

func (c *Client) GlobalQuote(ctx context.Context, symbol string) (*Quote, error) {
	raw, err := c.GlobalQuoteRaw(ctx, symbol)
	if err != nil {
		return nil, err
	}
	out, err := decode[quoteResponse](FunctionGlobalQuote, raw)
	if err != nil {
		return nil, err
	}
	return &out.Quote, nil
}

func (c *Client) SymbolSearch(ctx context.Context, keywords string) ([]SearchMatch, error) {
	params := url.Values{}
	params.Set("keywords", keywords)
	raw, err := c.Fetch(ctx, FunctionSymbolSearch, params)
	if err != nil {
		return nil, err
	}
	out, err := decode[searchResponse](FunctionSymbolSearch, raw)
	if err != nil {
		return nil, err
	}
	return out.BestMatches, nil
}

// EarningsCalendar returns the CSV calendar for symbol over horizon
// ("3month", "6month" or "12month"). An empty symbol returns every company.
func (c *Client) EarningsCalendar(ctx context.Context, symbol, horizon string) (*CSVTable, error) {
	params := url.Values{}
	if symbol != "" {
		params.Set("symbol", symbol)
	}
	params.Set("horizon", horizon)

	body, err := c.get(ctx, FunctionEarningsCalendar, params)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if perr := detectFailure(FunctionEarningsCalendar, trimmed); perr != nil {
			return nil, perr
		}
	}

	reader := csv.NewReader(bytes.NewReader(trimmed))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &ProviderError{Kind: KindDecode, Function: FunctionEarningsCalendar, Message: err.Error()}
	}

	table := &CSVTable{}
	if len(records) == 0 {
		return table, nil
	}
	table.Header = records[0]
	table.Rows = records[1:]
	return table, nil
}
