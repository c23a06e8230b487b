package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nathanoyet/contra-ai/internal/chart"
	"github.com/nathanoyet/contra-ai/internal/earnings"
)

type SeriesBuilder interface {
	Series(ctx context.Context, ticker string, r chart.Range) (*chart.Series, error)
}

type EventSource interface {
	Events(ctx context.Context, ticker string) ([]earnings.Event, error)
}

type ChartHandler struct {
	builder SeriesBuilder
	events  EventSource
}

func NewChartHandler(builder SeriesBuilder, events EventSource) *ChartHandler {
	return &ChartHandler{builder: builder, events: events}
}

func (h *ChartHandler) series(c *gin.Context) (*chart.Series, bool) {
	ticker, ok := tickerParam(c)
	if !ok {
		return nil, false
	}
	r, err := chart.ParseRange(c.Query("range"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid range"})
		return nil, false
	}
	s, err := h.builder.Series(c.Request.Context(), ticker, r)
	if err != nil {
		upstreamError(c, "Failed to fetch price history", err)
		return nil, false
	}
	return s, true
}

func (h *ChartHandler) GetChart(c *gin.Context) {
	s, ok := h.series(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s)
}

// GetMarkers pins the ticker's earnings events onto the same series the
// chart route returns for the range.
func (h *ChartHandler) GetMarkers(c *gin.Context) {
	s, ok := h.series(c)
	if !ok {
		return
	}
	events, err := h.events.Events(c.Request.Context(), s.Ticker)
	if err != nil {
		upstreamError(c, "Failed to fetch earnings", err)
		return
	}

	markers := chart.MatchMarkers(s.Points, events, s.Intraday)
	if markers == nil {
		markers = []chart.Marker{}
	}
	c.JSON(http.StatusOK, gin.H{
		"ticker":  s.Ticker,
		"range":   s.Range,
		"markers": markers,
	})
}
