package main

import (
	"github.com/nathanoyet/contra-ai/internal/chart"
	"github.com/nathanoyet/contra-ai/internal/earnings"
	"github.com/spf13/cobra"
)

var (
	chartRange   string
	chartMarkers bool
)

var chartCmd = &cobra.Command{
	Use:   "chart TICKER",
	Short: "Print the price series for a range, optionally with earnings markers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := chart.ParseRange(chartRange)
		if err != nil {
			return err
		}
		market := marketClient()

		s, err := chart.NewBuilder(market).Series(cmd.Context(), args[0], r)
		if err != nil {
			return err
		}
		if !chartMarkers {
			return printJSON(s)
		}

		events, err := earnings.NewService(market).Events(cmd.Context(), s.Ticker)
		if err != nil {
			return err
		}
		return printJSON(chart.MatchMarkers(s.Points, events, s.Intraday))
	},
}

func init() {
	chartCmd.Flags().StringVar(&chartRange, "range", string(chart.DefaultRange), "One of 1d, 1w, 1m, 6m, 1y, 3y")
	chartCmd.Flags().BoolVar(&chartMarkers, "markers", false, "Print earnings markers instead of the series")
}
