package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nathanoyet/contra-ai/internal/auth"
	"github.com/nathanoyet/contra-ai/internal/config"
	"github.com/nathanoyet/contra-ai/pkg/alphavantage"
)

// RequireConfig answers 500 with the first missing key before the handler
// runs. It is mounted after auth.RequireUser.
func RequireConfig(cfg *config.Config, keys ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := cfg.Require(keys...); err != nil {
			slog.Error("route configuration missing", "path", c.FullPath(), "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	user, ok := auth.UserFrom(c)
	if !ok {
		return ""
	}
	return user.ID
}

func tickerParam(c *gin.Context) (string, bool) {
	ticker, ok := normalizeTicker(c.Param("ticker"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticker"})
		return "", false
	}
	return ticker, true
}

// upstreamError maps a market-data failure to a response: provider rate
// limits become 429, everything else 502.
func upstreamError(c *gin.Context, msg string, err error) {
	if alphavantage.IsRateLimited(err) {
		slog.Warn("market data rate limited", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Market data rate limit reached, try again in a minute"})
		return
	}
	slog.Error(msg, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusBadGateway, gin.H{"error": msg})
}

func getQueryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
