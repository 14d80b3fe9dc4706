package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edibez/cryptodash/internal/ai"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List example questions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		samples := ai.GetSampleQueries()
		for _, category := range ai.SampleCategories {
			fmt.Fprintf(out, "%s:\n", strings.ReplaceAll(category, "_", " "))
			for _, q := range samples[category] {
				fmt.Fprintf(out, "  - %s\n", q)
			}
			fmt.Fprintln(out)
		}
	},
}

func init() {
	rootCmd.AddCommand(samplesCmd)
}
