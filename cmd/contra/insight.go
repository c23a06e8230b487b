package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nathanoyet/contra-ai/internal/earnings"
	"github.com/nathanoyet/contra-ai/internal/insight"
	"github.com/nathanoyet/contra-ai/internal/status"
	"github.com/nathanoyet/contra-ai/pkg/llm"
	"github.com/spf13/cobra"
)

var (
	insightMode   string
	insightPeriod string
	insightReport string
	insightStream bool
	insightPrompt bool
)

var insightCmd = &cobra.Command{
	Use:   "insight TICKER",
	Short: "Generate an analysis for a ticker",
	Long: `Collects provider data for the ticker, builds the analysis context and
generates the narrative. With --prompt the context is printed instead and
no model is called.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := insight.ParseMode(insightMode)
		if err != nil {
			return err
		}
		req := insight.Request{
			Ticker:       strings.ToUpper(args[0]),
			Mode:         mode,
			FiscalPeriod: insightPeriod,
			ReportDate:   insightReport,
		}
		market := marketClient()

		if mode == insight.ModePreEarnings {
			next, _, err := earnings.NewService(market).Lookup(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("look up next report: %w", err)
			}
			if next != nil {
				req.ExpectedDate, req.FiscalPeriod = next.Date, next.FiscalPeriod
				if next.EstimatedEPS != nil {
					req.EstimatedEPS = *next.EstimatedEPS
				}
			}
		}

		if insightPrompt {
			bundle := insight.Collect(cmd.Context(), market, req.Ticker)
			fmt.Println(insight.BuildContext(req, bundle, time.Now()))
			return nil
		}

		if err := cfg.Require(cfg.LLMKeyName()); err != nil {
			return err
		}
		client, err := llm.NewChatClient(cfg.LLMProvider, cfg.LLMKey(), cfg.LLMModel)
		if err != nil {
			return err
		}
		svc := insight.NewService(market, llm.NewGenerator(client), status.NewMemoryStore())

		var emit func(llm.Fragment) error
		if insightStream {
			emit = func(f llm.Fragment) error {
				if f.Reset {
					fmt.Fprintln(os.Stdout, "\n--- stream interrupted, replaying ---")
				}
				_, err := fmt.Fprint(os.Stdout, f.Text)
				return err
			}
		}

		text, err := svc.Analyze(cmd.Context(), req, "", emit)
		if err != nil {
			return err
		}
		if insightStream {
			fmt.Println()
			return nil
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	insightCmd.Flags().StringVar(&insightMode, "mode", "general", "general, event or pre_earnings")
	insightCmd.Flags().StringVar(&insightPeriod, "period", "", "Fiscal period label for event mode, e.g. Q1FY25")
	insightCmd.Flags().StringVar(&insightReport, "report-date", "", "Report date for event mode (YYYY-MM-DD)")
	insightCmd.Flags().BoolVar(&insightStream, "stream", false, "Stream the narrative as it is generated")
	insightCmd.Flags().BoolVar(&insightPrompt, "prompt", false, "Print the analysis context without calling the model")
}
