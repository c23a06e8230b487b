package main

import (
	"fmt"

	"github.com/nathanoyet/contra-ai/internal/insight"
	"github.com/spf13/cobra"
)

var (
	newsLimit int
	newsJSON  bool
)

var newsCmd = &cobra.Command{
	Use:   "news TICKER",
	Short: "Show recent news with sentiment for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		market := marketClient()
		if newsJSON {
			resp, err := market.NewsSentiment(cmd.Context(), args[0], newsLimit)
			if err != nil {
				return err
			}
			return printJSON(resp.Feed)
		}

		raw, err := market.NewsSentimentRaw(cmd.Context(), args[0], newsLimit)
		if err != nil {
			return err
		}
		fmt.Println(insight.SummarizeNews(insight.Payload{Raw: raw}))
		return nil
	},
}

func init() {
	newsCmd.Flags().IntVar(&newsLimit, "limit", 50, "Number of articles to request")
	newsCmd.Flags().BoolVar(&newsJSON, "json", false, "Print the articles as JSON instead of the summary")
}
