package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search KEYWORDS...",
	Short: "Look up ticker symbols by name or symbol fragment",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		matches, err := marketClient().SymbolSearch(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printJSON(matches)
	},
}
