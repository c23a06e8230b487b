package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nathanoyet/contra-ai/internal/logo"
)

const logoCacheControl = "public, max-age=86400, stale-while-revalidate=604800"

type LogoFetcher interface {
	Fetch(ctx context.Context, ticker string) (*logo.Image, error)
}

type LogoHandler struct {
	fetcher LogoFetcher
}

func NewLogoHandler(fetcher LogoFetcher) *LogoHandler {
	return &LogoHandler{fetcher: fetcher}
}

func (h *LogoHandler) GetLogo(c *gin.Context) {
	ticker, ok := tickerParam(c)
	if !ok {
		return
	}

	img, err := h.fetcher.Fetch(c.Request.Context(), ticker)
	if errors.Is(err, logo.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Logo not found"})
		return
	}
	if err != nil {
		slog.Error("error fetching logo", "ticker", ticker, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch logo"})
		return
	}

	c.Header("Cache-Control", logoCacheControl)
	c.Header("X-Logo-Source", img.Source)
	c.Data(http.StatusOK, img.ContentType, img.Data)
}
