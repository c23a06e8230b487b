package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nathanoyet/contra-ai/internal/config"
	"github.com/nathanoyet/contra-ai/internal/earnings"
)

type CalendarSource interface {
	Calendar(ctx context.Context, tickers []string, year int, month time.Month) ([]earnings.Day, error)
	Lookup(ctx context.Context, ticker string) (next, previous *earnings.Event, err error)
	Now() time.Time
}

// TickerLister returns the tickers on a user's watchlist.
type TickerLister interface {
	Tickers(ctx context.Context, userID string) ([]string, error)
}

type EarningsHandler struct {
	source    CalendarSource
	watchlist TickerLister
}

// NewEarningsHandler builds the handler. watchlist may be nil, in which
// case the calendar requires an explicit tickers parameter.
func NewEarningsHandler(source CalendarSource, watchlist TickerLister) *EarningsHandler {
	return &EarningsHandler{source: source, watchlist: watchlist}
}

// GetCalendar groups one month of reports by day for the requested tickers,
// or for the user's watchlist when none are given.
func (h *EarningsHandler) GetCalendar(c *gin.Context) {
	now := h.source.Now()
	year, ok := getQueryInt(c, "year", now.Year())
	if !ok || year < 1900 || year > 2200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return
	}
	month, ok := getQueryInt(c, "month", int(now.Month()))
	if !ok || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
		return
	}

	ctx := c.Request.Context()
	tickers := splitTickers(c.Query("tickers"))
	if len(tickers) == 0 {
		if h.watchlist == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": (&config.MissingError{Key: config.KeyDatabaseURL}).Error()})
			return
		}
		var err error
		tickers, err = h.watchlist.Tickers(ctx, currentUserID(c))
		if err != nil {
			slog.Error("error fetching watchlist tickers", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
	}

	resp := CalendarResponse{Year: year, Month: month, Tickers: tickers, Days: []earnings.Day{}}
	if len(tickers) == 0 {
		resp.Tickers = []string{}
		c.JSON(http.StatusOK, resp)
		return
	}

	days, err := h.source.Calendar(ctx, tickers, year, time.Month(month))
	if err != nil {
		upstreamError(c, "Failed to fetch earnings calendar", err)
		return
	}
	if days != nil {
		resp.Days = days
	}

	c.JSON(http.StatusOK, resp)
}

func (h *EarningsHandler) GetEarnings(c *gin.Context) {
	ticker, ok := tickerParam(c)
	if !ok {
		return
	}

	next, previous, err := h.source.Lookup(c.Request.Context(), ticker)
	if errors.Is(err, earnings.ErrNoEvents) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No earnings found for " + ticker})
		return
	}
	if err != nil {
		upstreamError(c, "Failed to fetch earnings", err)
		return
	}

	c.JSON(http.StatusOK, EarningsLookupResponse{Ticker: ticker, Next: next, Previous: previous})
}
