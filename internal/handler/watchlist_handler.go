package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nathanoyet/contra-ai/internal/model"
	"github.com/nathanoyet/contra-ai/pkg/alphavantage"
)

type WatchlistStore interface {
	List(ctx context.Context, userID string) ([]model.WatchlistEntry, error)
	Add(ctx context.Context, e *model.WatchlistEntry) error
	Remove(ctx context.Context, userID, ticker string) (bool, error)
	Tickers(ctx context.Context, userID string) ([]string, error)
}

type QuoteSource interface {
	GlobalQuote(ctx context.Context, symbol string) (*alphavantage.Quote, error)
	Overview(ctx context.Context, symbol string) (alphavantage.Overview, error)
}

type WatchlistHandler struct {
	store  WatchlistStore
	quotes QuoteSource
	events EventLookup
}

// NewWatchlistHandler builds the handler. A nil quotes source (no market
// key configured) skips the company name lookup on add.
func NewWatchlistHandler(store WatchlistStore, quotes QuoteSource, events EventLookup) *WatchlistHandler {
	return &WatchlistHandler{store: store, quotes: quotes, events: events}
}

func toEntryResponse(e model.WatchlistEntry) WatchlistEntryResponse {
	return WatchlistEntryResponse{
		ID:          e.ID.String(),
		Ticker:      e.Ticker,
		CompanyName: e.CompanyName,
		CreatedAt:   formatTime(e.CreatedAt),
	}
}

func (h *WatchlistHandler) GetWatchlist(c *gin.Context) {
	entries, err := h.store.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		slog.Error("error fetching watchlist", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	resp := make([]WatchlistEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toEntryResponse(e))
	}
	c.JSON(http.StatusOK, gin.H{"entries": resp})
}

func (h *WatchlistHandler) PostWatchlist(c *gin.Context) {
	var body WatchlistRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	ticker, _ := normalizeTicker(body.Ticker)

	entry := &model.WatchlistEntry{
		ID:          uuid.New(),
		UserID:      currentUserID(c),
		Ticker:      ticker,
		CompanyName: strings.TrimSpace(body.CompanyName),
	}
	if entry.CompanyName == "" {
		entry.CompanyName = h.companyName(c.Request.Context(), ticker)
	}
	if err := h.store.Add(c.Request.Context(), entry); err != nil {
		slog.Error("error adding to watchlist", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, toEntryResponse(*entry))
}

func (h *WatchlistHandler) DeleteWatchlist(c *gin.Context) {
	ticker, ok := tickerParam(c)
	if !ok {
		return
	}

	removed, err := h.store.Remove(c.Request.Context(), currentUserID(c), ticker)
	if err != nil {
		slog.Error("error removing from watchlist", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticker not in watchlist"})
		return
	}

	c.Status(http.StatusNoContent)
}

// companyName looks the name up from the company overview. A failed lookup
// leaves the name empty.
func (h *WatchlistHandler) companyName(ctx context.Context, ticker string) string {
	if h.quotes == nil {
		return ""
	}
	overview, err := h.quotes.Overview(ctx, ticker)
	if err != nil {
		slog.Warn("company name lookup failed", "ticker", ticker, "error", err)
		return ""
	}
	return strings.TrimSpace(overview["Name"])
}

// PostRefresh fetches the latest quote and next earnings date for every
// watched ticker in parallel. A ticker whose lookups fail carries an error
// string instead of failing the batch.
func (h *WatchlistHandler) PostRefresh(c *gin.Context) {
	ctx := c.Request.Context()
	entries, err := h.store.List(ctx, currentUserID(c))
	if err != nil {
		slog.Error("error fetching watchlist", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	items := make([]WatchlistRefreshItem, len(entries))
	var wg sync.WaitGroup
	for i, e := range entries {
		wg.Add(1)
		go func(i int, e model.WatchlistEntry) {
			defer wg.Done()
			items[i] = h.refresh(ctx, e)
		}(i, e)
	}
	wg.Wait()

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *WatchlistHandler) refresh(ctx context.Context, e model.WatchlistEntry) WatchlistRefreshItem {
	item := WatchlistRefreshItem{Ticker: e.Ticker, CompanyName: e.CompanyName}

	q, err := h.quotes.GlobalQuote(ctx, e.Ticker)
	if err != nil {
		slog.Warn("quote refresh failed", "ticker", e.Ticker, "error", err)
		item.Error = "quote unavailable"
	} else {
		item.Price = alphavantage.Value(q.Price)
		item.Change = alphavantage.Value(q.Change)
		item.ChangePercent = alphavantage.Value(q.ChangePercent)
	}

	next, _, err := h.events.Lookup(ctx, e.Ticker)
	if err != nil {
		slog.Debug("no upcoming earnings", "ticker", e.Ticker, "error", err)
	}
	item.NextEarnings = next
	return item
}
