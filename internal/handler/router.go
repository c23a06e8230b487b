package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/nathanoyet/contra-ai/internal/auth"
	"github.com/nathanoyet/contra-ai/internal/config"
)

type Handlers struct {
	Insight   *InsightHandler
	Status    *StatusHandler
	Chart     *ChartHandler
	Search    *SearchHandler
	Watchlist *WatchlistHandler
	Earnings  *EarningsHandler
	Logo      *LogoHandler
	Health    *HealthHandler
}

// Register mounts every route. All /api routes authenticate first, then
// check the configuration they depend on, so an anonymous caller never
// learns which keys are missing and no upstream is touched.
func Register(r *gin.Engine, h Handlers, verifier auth.Verifier, cfg *config.Config) {
	r.GET("/health", h.Health.GetHealth)

	api := r.Group("/api", auth.RequireUser(verifier))

	market := RequireConfig(cfg, config.KeyAlphaVantage)
	database := RequireConfig(cfg, config.KeyDatabaseURL)

	api.POST("/insight", RequireConfig(cfg, config.KeyAlphaVantage, cfg.LLMKeyName()), h.Insight.PostInsight)
	api.POST("/insight/followup", RequireConfig(cfg, cfg.LLMKeyName()), h.Insight.PostFollowUp)
	api.GET("/insight/:ticker", database, h.Insight.GetConversation)

	api.GET("/status/:id", h.Status.GetStatus)

	api.GET("/chart/:ticker", market, h.Chart.GetChart)
	api.GET("/chart/:ticker/markers", market, h.Chart.GetMarkers)
	api.GET("/search", market, h.Search.GetSearch)

	api.GET("/watchlist", database, h.Watchlist.GetWatchlist)
	api.POST("/watchlist", database, h.Watchlist.PostWatchlist)
	api.POST("/watchlist/refresh", database, market, h.Watchlist.PostRefresh)
	api.DELETE("/watchlist/:ticker", database, h.Watchlist.DeleteWatchlist)

	api.GET("/calendar", market, h.Earnings.GetCalendar)
	api.GET("/earnings/:ticker", market, h.Earnings.GetEarnings)

	api.GET("/logo/:ticker", h.Logo.GetLogo)
}
