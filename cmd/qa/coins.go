package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edibez/cryptodash/internal/ai"
)

var coinsCmd = &cobra.Command{
	Use:   "coins",
	Short: "List the coins the assistant recognizes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		for _, c := range ai.DefaultLexicon().Coins() {
			fmt.Fprintf(out, "%-10s %-6s %s\n", c.ID, c.Symbol, strings.Join(c.Terms, ", "))
		}
	},
}

func init() {
	rootCmd.AddCommand(coinsCmd)
}
