package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL))
}

func jsonHandler(payload interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}
}

func TestFetchFailureMarkers(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]string
		kind    ErrorKind
	}{
		{
			name:    "note is a rate limit",
			payload: map[string]string{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."},
			kind:    KindRateLimit,
		},
		{
			name:    "error message is an api error",
			payload: map[string]string{"Error Message": "Invalid API call."},
			kind:    KindAPIError,
		},
		{
			name:    "information only",
			payload: map[string]string{"Information": "This is a premium endpoint."},
			kind:    KindInformation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, jsonHandler(tt.payload))

			for _, fn := range []string{FunctionOverview, FunctionNewsSentiment, FunctionEarnings, FunctionDaily, FunctionGlobalQuote} {
				raw, err := client.Fetch(context.Background(), fn, symbolParams("AAPL"))
				assert.Equal(t, nil, raw)

				var perr *ProviderError
				assert.Equal(t, true, errors.As(err, &perr))
				assert.Equal(t, tt.kind, perr.Kind)
				assert.Equal(t, fn, perr.Function)
			}
		})
	}
}

func TestFetchInformationAlongsideData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Global Quote":{"01. symbol":"AAPL","05. price":"190.00"},"Information":"The demo API key is for demo purposes only."}`))
	})

	raw, err := client.Fetch(context.Background(), FunctionGlobalQuote, symbolParams("AAPL"))

	assert.Equal(t, nil, err)
	assert.Equal(t, true, len(raw) > 0)

	quote, err := client.GlobalQuote(context.Background(), "AAPL")
	assert.Equal(t, nil, err)
	assert.Equal(t, "190.00", quote.Price)
}

func TestFetchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient("test-key", WithBaseURL(url))
	_, err := client.Fetch(context.Background(), FunctionOverview, symbolParams("AAPL"))

	var perr *ProviderError
	assert.Equal(t, true, errors.As(err, &perr))
	assert.Equal(t, KindTransport, perr.Kind)
}

func TestFetchSendsFunctionAndKey(t *testing.T) {
	var gotFunction, gotKey, gotSymbol string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotFunction = r.URL.Query().Get("function")
		gotKey = r.URL.Query().Get("apikey")
		gotSymbol = r.URL.Query().Get("symbol")
		w.Write([]byte(`{"Symbol":"AAPL","Name":"Apple Inc"}`))
	})

	overview, err := client.Overview(context.Background(), "AAPL")

	assert.Equal(t, nil, err)
	assert.Equal(t, "OVERVIEW", gotFunction)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "AAPL", gotSymbol)
	assert.Equal(t, "Apple Inc", overview["Name"])
}

func TestDailySeriesPointsAscending(t *testing.T) {
	payload := map[string]interface{}{
		"Meta Data": map[string]string{"2. Symbol": "AAPL", "5. Time Zone": "US/Eastern"},
		"Time Series (Daily)": map[string]interface{}{
			"2025-01-16": map[string]string{"1. open": "10", "2. high": "12", "3. low": "9", "4. close": "11", "5. volume": "100"},
			"2025-01-14": map[string]string{"1. open": "8", "2. high": "9", "3. low": "7", "4. close": "8.5", "5. volume": "200"},
			"2025-01-15": map[string]string{"1. open": "8.5", "2. high": "10", "3. low": "8", "4. close": "10", "5. volume": "150"},
		},
	}
	client := newTestClient(t, jsonHandler(payload))

	series, err := client.DailySeries(context.Background(), "AAPL", OutputCompact)
	assert.Equal(t, nil, err)

	points := series.Points()
	assert.Equal(t, 3, len(points))
	assert.Equal(t, "2025-01-14", points[0].Time.Format("2006-01-02"))
	assert.Equal(t, "2025-01-16", points[2].Time.Format("2006-01-02"))
	assert.Equal(t, 11.0, points[2].Close)
	assert.Equal(t, int64(200), points[0].Volume)
}

func TestIntradaySeriesUsesSeriesTimeZone(t *testing.T) {
	payload := map[string]interface{}{
		"Meta Data": map[string]string{"4. Interval": "5min", "6. Time Zone": "US/Eastern"},
		"Time Series (5min)": map[string]interface{}{
			"2025-01-15 09:30:00": map[string]string{"1. open": "1", "2. high": "1", "3. low": "1", "4. close": "1", "5. volume": "1"},
		},
	}
	client := newTestClient(t, jsonHandler(payload))

	series, err := client.IntradaySeries(context.Background(), "AAPL", "5min", OutputCompact)
	assert.Equal(t, nil, err)

	points := series.Points()
	assert.Equal(t, 1, len(points))
	assert.Equal(t, 14, points[0].Time.UTC().Hour())
	assert.Equal(t, time.Month(1), points[0].Time.Month())
}

func TestEarningsCalendarCSV(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "12month", r.URL.Query().Get("horizon"))
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("symbol,name,reportDate,fiscalDateEnding,estimate,currency\r\nAAPL,Apple Inc,2025-01-30,2024-12-31,2.35,USD\r\n"))
	})

	table, err := client.EarningsCalendar(context.Background(), "AAPL", "12month")

	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"symbol", "name", "reportDate", "fiscalDateEnding", "estimate", "currency"}, table.Header)
	assert.Equal(t, 1, len(table.Rows))
	assert.Equal(t, "2.35", table.Rows[0][4])
}

func TestEarningsCalendarRateLimit(t *testing.T) {
	client := newTestClient(t, jsonHandler(map[string]string{"Note": "slow down"}))

	_, err := client.EarningsCalendar(context.Background(), "AAPL", "12month")

	assert.Equal(t, true, IsRateLimited(err))
}

func TestSymbolSearchThroughRewrite(t *testing.T) {
	payload := map[string]interface{}{
		"bestMatches": []map[string]string{
			{"1. symbol": "TSLA", "2. name": "Tesla Inc", "3. type": "Equity", "4. region": "United States", "8. currency": "USD", "9. matchScore": "1.0000"},
		},
	}
	srv := httptest.NewServer(jsonHandler(payload))
	defer srv.Close()

	client := NewClient("test-key", WithHTTPClient(srv.Client()))
	client.httpClient.Transport = &rewriteTransport{base: srv.URL, inner: http.DefaultTransport}

	matches, err := client.SymbolSearch(context.Background(), "tesla")

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(matches))
	assert.Equal(t, "TSLA", matches[0].Symbol)
	assert.Equal(t, "Tesla Inc", matches[0].Name)
}

func TestValue(t *testing.T) {
	assert.Equal(t, (*string)(nil), Value("None"))
	assert.Equal(t, (*string)(nil), Value(" "))
	assert.Equal(t, "1.23", *Value("1.23"))
}

// rewriteTransport redirects all requests to a fixed base URL (test server).
type rewriteTransport struct {
	base  string
	inner http.RoundTripper
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	parsed, _ := http.NewRequest("GET", rt.base, nil)
	req2.URL.Host = parsed.URL.Host
	req2.URL.Scheme = parsed.URL.Scheme
	return rt.inner.RoundTrip(req2)
}
