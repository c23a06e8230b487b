package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nathanoyet/contra-ai/internal/config"
	"github.com/nathanoyet/contra-ai/internal/telemetry"
	"github.com/nathanoyet/contra-ai/pkg/alphavantage"
	"github.com/spf13/cobra"
)

var (
	cfg      *config.Config
	shutdown telemetry.Shutdown
)

var rootCmd = &cobra.Command{
	Use:   "contra",
	Short: "Operator tools for the contra-ai market data and analysis services",
	Long: `contra runs the same services as the API server directly from the shell,
without authentication or a database. Output is JSON on stdout.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		shutdown = telemetry.Init(telemetry.Options{
			Level:          cfg.LogLevel,
			Format:         "text",
			TracingEnabled: cfg.TracingEnabled,
			Output:         os.Stderr,
		})
		return cfg.Require(config.KeyAlphaVantage)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if shutdown == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdown(ctx)
	},
}

func init() {
	rootCmd.AddCommand(calendarCmd, earningsCmd, chartCmd, searchCmd, newsCmd, insightCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func marketClient() *alphavantage.Client {
	return alphavantage.NewClient(cfg.AlphaVantageKey, alphavantage.WithRateLimit(cfg.AlphaVantageRPM))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
