package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"
	"github.com/nathanoyet/contra-ai/internal/chart"
	"github.com/nathanoyet/contra-ai/internal/earnings"
	"github.com/nathanoyet/contra-ai/internal/logo"
	"github.com/nathanoyet/contra-ai/internal/model"
	"github.com/nathanoyet/contra-ai/pkg/alphavantage"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestGetChart(t *testing.T) {
	env := newTestEnv()
	env.market.series.Points = []alphavantage.Point{{Time: day("2025-01-30"), Close: 237.59}}

	w := env.do("GET", "/api/chart/aapl?range=1y", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var s chart.Series
	decodeBody(t, w, &s)
	assert.Equal(t, "AAPL", s.Ticker)
	assert.Equal(t, chart.Range1Y, s.Range)
	assert.Equal(t, 1, len(s.Points))
}

func TestGetChart_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		code int
	}{
		{"bad range", "/api/chart/AAPL?range=5y", nil, http.StatusBadRequest},
		{"bad ticker", "/api/chart/AA$PL", nil, http.StatusBadRequest},
		{"rate limited", "/api/chart/AAPL", &alphavantage.ProviderError{Kind: alphavantage.KindRateLimit}, http.StatusTooManyRequests},
		{"provider error", "/api/chart/AAPL", &alphavantage.ProviderError{Kind: alphavantage.KindAPIError}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.market.err = tt.err

			w := env.do("GET", tt.path, nil)

			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestGetMarkers(t *testing.T) {
	env := newTestEnv()
	env.market.series.Points = []alphavantage.Point{
		{Time: day("2024-10-31"), Close: 225.91},
		{Time: day("2025-01-30"), Close: 237.59},
	}
	env.market.events = []earnings.Event{
		{Ticker: "AAPL", Date: "2025-01-30", FiscalPeriod: "Q1FY25"},
		{Ticker: "AAPL", Date: "2025-05-01", FiscalPeriod: "Q2FY25"},
	}

	w := env.do("GET", "/api/chart/AAPL/markers?range=6m", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Ticker  string         `json:"ticker"`
		Markers []chart.Marker `json:"markers"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, 1, len(resp.Markers))
	assert.Equal(t, "Q1FY25", resp.Markers[0].Event.FiscalPeriod)
	assert.Equal(t, 237.59, resp.Markers[0].Close)
}

func TestGetSearch(t *testing.T) {
	env := newTestEnv()
	for i := 0; i < 12; i++ {
		env.market.matches = append(env.market.matches, alphavantage.SearchMatch{Symbol: "AAPL", Name: "Apple Inc"})
	}

	w := env.do("GET", "/api/search?q=apple", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Query   string         `json:"query"`
		Results []SearchResult `json:"results"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, "apple", resp.Query)
	assert.Equal(t, maxSearchResults, len(resp.Results))
	assert.Equal(t, "Apple Inc", resp.Results[0].Name)
}

func TestGetSearch_MissingQuery(t *testing.T) {
	env := newTestEnv()

	w := env.do("GET", "/api/search?q=%20", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, env.up.count())
}

func TestWatchlist_AddListRemove(t *testing.T) {
	env := newTestEnv()

	w := env.do("POST", "/api/watchlist", gin.H{"ticker": "msft", "company_name": "Microsoft"})
	assert.Equal(t, http.StatusCreated, w.Code)
	var created WatchlistEntryResponse
	decodeBody(t, w, &created)
	assert.Equal(t, "MSFT", created.Ticker)

	w = env.do("GET", "/api/watchlist", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Entries []WatchlistEntryResponse `json:"entries"`
	}
	decodeBody(t, w, &list)
	assert.Equal(t, 1, len(list.Entries))
	assert.Equal(t, "Microsoft", list.Entries[0].CompanyName)

	w = env.do("DELETE", "/api/watchlist/msft", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do("DELETE", "/api/watchlist/MSFT", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWatchlist_AddLooksUpCompanyName(t *testing.T) {
	env := newTestEnv()
	env.market.overviews = map[string]alphavantage.Overview{"NVDA": {"Name": "NVIDIA Corporation"}}

	w := env.do("POST", "/api/watchlist", gin.H{"ticker": "NVDA"})
	assert.Equal(t, http.StatusCreated, w.Code)
	var created WatchlistEntryResponse
	decodeBody(t, w, &created)
	assert.Equal(t, "NVIDIA Corporation", created.CompanyName)

	w = env.do("POST", "/api/watchlist", gin.H{"ticker": "ZZZZ"})
	assert.Equal(t, http.StatusCreated, w.Code)
	decodeBody(t, w, &created)
	assert.Equal(t, "", created.CompanyName)
}

func TestWatchlist_AddWithoutMarketKeySkipsLookup(t *testing.T) {
	env := newTestEnv()
	env.cfg.AlphaVantageKey = ""
	env.market.overviews = map[string]alphavantage.Overview{"NVDA": {"Name": "NVIDIA Corporation"}}

	w := env.do("POST", "/api/watchlist", gin.H{"ticker": "NVDA"})

	assert.Equal(t, http.StatusCreated, w.Code)
	var created WatchlistEntryResponse
	decodeBody(t, w, &created)
	assert.Equal(t, "", created.CompanyName)
	assert.Equal(t, 0, env.up.count())
}

func TestWatchlist_InvalidTicker(t *testing.T) {
	env := newTestEnv()

	w := env.do("POST", "/api/watchlist", gin.H{"ticker": "not a ticker"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, len(env.watchlist.entries))
}

func TestWatchlist_Refresh(t *testing.T) {
	env := newTestEnv()
	env.watchlist.entries = []model.WatchlistEntry{
		{ID: uuid.New(), UserID: "user-1", Ticker: "AAPL", CompanyName: "Apple"},
		{ID: uuid.New(), UserID: "user-1", Ticker: "ZZZZ"},
	}
	env.market.quotes["AAPL"] = &alphavantage.Quote{Symbol: "AAPL", Price: "241.84", Change: "3.25", ChangePercent: "1.3622%"}
	env.market.next = &earnings.Event{Ticker: "AAPL", Date: "2025-05-01"}

	w := env.do("POST", "/api/watchlist/refresh", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items []WatchlistRefreshItem `json:"items"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, 2, len(resp.Items))

	aapl := resp.Items[0]
	assert.Equal(t, "AAPL", aapl.Ticker)
	assert.Equal(t, "241.84", *aapl.Price)
	assert.Equal(t, "1.3622%", *aapl.ChangePercent)
	assert.Equal(t, "2025-05-01", aapl.NextEarnings.Date)
	assert.Equal(t, "", aapl.Error)

	missing := resp.Items[1]
	assert.Equal(t, "ZZZZ", missing.Ticker)
	assert.Equal(t, true, missing.Price == nil)
	assert.Equal(t, "quote unavailable", missing.Error)
}

func TestGetCalendar_DefaultsToWatchlist(t *testing.T) {
	env := newTestEnv()
	env.watchlist.entries = []model.WatchlistEntry{
		{UserID: "user-1", Ticker: "AAPL"},
		{UserID: "user-2", Ticker: "TSLA"},
	}
	env.market.days = []earnings.Day{{Date: "2025-03-20", Events: []earnings.Event{{Ticker: "AAPL", Date: "2025-03-20"}}}}

	w := env.do("GET", "/api/calendar", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp CalendarResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, 2025, resp.Year)
	assert.Equal(t, 3, resp.Month)
	assert.Equal(t, []string{"AAPL"}, resp.Tickers)
	assert.Equal(t, 1, len(resp.Days))
	assert.Equal(t, []string{"AAPL"}, env.market.calendarTickers)
	assert.Equal(t, time.March, env.market.calendarMonth)
}

func TestGetCalendar_ExplicitTickers(t *testing.T) {
	env := newTestEnv()

	w := env.do("GET", "/api/calendar?tickers=msft,nvda&year=2025&month=4", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"MSFT", "NVDA"}, env.market.calendarTickers)
	assert.Equal(t, time.April, env.market.calendarMonth)
}

func TestGetCalendar_EmptyWatchlist(t *testing.T) {
	env := newTestEnv()

	w := env.do("GET", "/api/calendar", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp CalendarResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, 0, len(resp.Days))
	assert.Equal(t, 0, env.up.count())
}

func TestGetCalendar_InvalidMonth(t *testing.T) {
	env := newTestEnv()

	w := env.do("GET", "/api/calendar?tickers=AAPL&month=13", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetEarnings(t *testing.T) {
	env := newTestEnv()
	env.market.next = &earnings.Event{Ticker: "AAPL", Date: "2025-05-01"}
	env.market.previous = &earnings.Event{Ticker: "AAPL", Date: "2025-01-30", IsPast: true}

	w := env.do("GET", "/api/earnings/aapl", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp EarningsLookupResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "AAPL", resp.Ticker)
	assert.Equal(t, "2025-05-01", resp.Next.Date)
	assert.Equal(t, "2025-01-30", resp.Previous.Date)
}

func TestGetEarnings_NotFound(t *testing.T) {
	env := newTestEnv()

	w := env.do("GET", "/api/earnings/ZZZZ", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetLogo(t *testing.T) {
	env := newTestEnv()
	env.logos.img = &logo.Image{Data: []byte("\x89PNG"), ContentType: "image/png", Source: "https://logo.clearbit.com/apple.com"}

	w := env.do("GET", "/api/logo/AAPL", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, logoCacheControl, w.Header().Get("Cache-Control"))
	assert.Equal(t, "\x89PNG", w.Body.String())
}

func TestGetLogo_NotFound(t *testing.T) {
	env := newTestEnv()

	w := env.do("GET", "/api/logo/ZZZZ", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
