package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askJSON    bool
	askOffline bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question about cryptocurrencies",
	Long: `Classifies the question, extracts coins and timeframe and answers it
from live CoinGecko data. Answers fall back to representative values when
the provider is unreachable.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full result as JSON")
	askCmd.Flags().BoolVar(&askOffline, "offline", false, "skip the provider and use fallback data")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	pipeline, err := newPipeline(askOffline, newLogger())
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	result := pipeline.ProcessQuery(cmd.Context(), strings.Join(args, " "))
	out := cmd.OutOrStdout()
	if !askJSON {
		fmt.Fprintln(out, result.Answer)
		return nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
