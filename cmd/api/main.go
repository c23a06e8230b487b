package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nathanoyet/contra-ai/db"
	"github.com/nathanoyet/contra-ai/internal/auth"
	"github.com/nathanoyet/contra-ai/internal/chart"
	"github.com/nathanoyet/contra-ai/internal/config"
	"github.com/nathanoyet/contra-ai/internal/earnings"
	"github.com/nathanoyet/contra-ai/internal/handler"
	"github.com/nathanoyet/contra-ai/internal/insight"
	"github.com/nathanoyet/contra-ai/internal/logo"
	"github.com/nathanoyet/contra-ai/internal/repository"
	"github.com/nathanoyet/contra-ai/internal/status"
	"github.com/nathanoyet/contra-ai/internal/telemetry"
	"github.com/nathanoyet/contra-ai/pkg/alphavantage"
	"github.com/nathanoyet/contra-ai/pkg/llm"
)

func main() {

	cfg := config.Load()

	shutdown := telemetry.Init(telemetry.Options{
		Level:          cfg.LogLevel,
		Format:         cfg.LogFormat,
		TracingEnabled: cfg.TracingEnabled,
	})
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdown(ctx)
	}()

	var (
		analyses  handler.AnalysisStore
		turns     handler.ConversationStore
		watchlist *repository.WatchlistRepository
		ping      func(ctx context.Context) error
	)
	if cfg.DatabaseURL != "" {
		if err := db.Connect(cfg.DatabaseURL); err != nil {
			log.Fatalf("error connecting to DB: %v", err)
		}
		defer db.Close()

		analyses = repository.NewAnalysisRepository(db.DB)
		turns = repository.NewConversationRepository(db.DB)
		watchlist = repository.NewWatchlistRepository(db.DB)
		ping = db.DB.PingContext
	} else {
		slog.Warn("DATABASE_URL not set, persistence routes will answer with a configuration error")
	}

	var statuses status.Store = status.NewMemoryStore()
	if cfg.RedisURL != "" {
		if err := db.ConnectRedis(cfg.RedisURL); err != nil {
			log.Fatalf("error connecting to Redis: %v", err)
		}
		defer db.CloseRedis()
		statuses = status.NewRedisStore(db.Redis)
	}

	market := alphavantage.NewClient(cfg.AlphaVantageKey, alphavantage.WithRateLimit(cfg.AlphaVantageRPM))

	chatClient, err := llm.NewChatClient(cfg.LLMProvider, cfg.LLMKey(), cfg.LLMModel)
	if err != nil {
		log.Fatalf("error creating LLM client: %v", err)
	}
	generator := llm.NewGenerator(chatClient)

	earningsService := earnings.NewService(market)
	insightService := insight.NewService(market, generator, statuses)

	logoOpts := []logo.Option{}
	if cfg.FinnhubKey != "" {
		logoOpts = append(logoOpts, logo.WithProfiles(logo.NewFinnhubProfiles(cfg.FinnhubKey)))
	}

	var verifier auth.Verifier
	if cfg.SupabaseURL != "" && cfg.SupabaseAnonKey != "" {
		verifier = auth.NewSupabaseVerifier(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	} else {
		slog.Warn("SUPABASE_URL or SUPABASE_ANON_KEY not set, every /api request will be rejected")
	}

	var (
		watchlistStore handler.WatchlistStore
		tickerLister   handler.TickerLister
		quotes         handler.QuoteSource
	)
	if watchlist != nil {
		watchlistStore, tickerLister = watchlist, watchlist
	}
	if cfg.AlphaVantageKey != "" {
		quotes = market
	}

	handlers := handler.Handlers{
		Insight:   handler.NewInsightHandler(insightService, analyses, turns, earningsService, generator.ModelName()),
		Status:    handler.NewStatusHandler(statuses),
		Chart:     handler.NewChartHandler(chart.NewBuilder(market), earningsService),
		Search:    handler.NewSearchHandler(market),
		Watchlist: handler.NewWatchlistHandler(watchlistStore, quotes, earningsService),
		Earnings:  handler.NewEarningsHandler(earningsService, tickerLister),
		Logo:      handler.NewLogoHandler(logo.NewResolver(logoOpts...)),
		Health:    handler.NewHealthHandler(ping),
	}

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if cfg.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	handler.Register(r, handlers, verifier, cfg)

	slog.Info("starting server", "port", cfg.Port, "llm_provider", cfg.LLMProvider, "model", generator.ModelName())

	err = r.Run(":" + cfg.Port)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
