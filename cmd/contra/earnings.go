package main

import (
	"strings"
	"time"

	"github.com/nathanoyet/contra-ai/internal/earnings"
	"github.com/spf13/cobra"
)

var (
	calendarYear  int
	calendarMonth int
)

var calendarCmd = &cobra.Command{
	Use:   "calendar TICKER[,TICKER...]",
	Short: "Show one month of earnings reports grouped by day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := earnings.NewService(marketClient())
		now := svc.Now()
		year, month := calendarYear, time.Month(calendarMonth)
		if year == 0 {
			year = now.Year()
		}
		if month == 0 {
			month = now.Month()
		}

		var tickers []string
		for _, t := range strings.Split(args[0], ",") {
			if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
				tickers = append(tickers, t)
			}
		}

		days, err := svc.Calendar(cmd.Context(), tickers, year, month)
		if err != nil {
			return err
		}
		return printJSON(days)
	},
}

var earningsAll bool

var earningsCmd = &cobra.Command{
	Use:   "earnings TICKER",
	Short: "Show the next and previous earnings report for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := earnings.NewService(marketClient())

		if earningsAll {
			events, err := svc.Events(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(events)
		}

		next, previous, err := svc.Lookup(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(map[string]*earnings.Event{"next": next, "previous": previous})
	},
}

func init() {
	calendarCmd.Flags().IntVar(&calendarYear, "year", 0, "Calendar year (default current)")
	calendarCmd.Flags().IntVar(&calendarMonth, "month", 0, "Calendar month 1-12 (default current)")
	earningsCmd.Flags().BoolVar(&earningsAll, "all", false, "Print every reconciled event instead of next and previous")
}
