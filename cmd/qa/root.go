package main

import (
	"github.com/spf13/cobra"

	"github.com/edibez/cryptodash/internal/ai"
	"github.com/edibez/cryptodash/internal/config"
	"github.com/edibez/cryptodash/internal/logger"
	"github.com/edibez/cryptodash/internal/price"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:          "qa",
	Short:        "Ask the crypto assistant from the terminal",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline decisions to stderr")
}

func newLogger() logger.Logger {
	if !verbose {
		return logger.NewNoOpLogger()
	}
	return logger.NewStructured("debug", "console")
}

// newPipeline talks to CoinGecko directly, or answers from fallback data when offline
func newPipeline(offline bool, log logger.Logger) (*ai.Pipeline, error) {
	var market ai.MarketData = price.Offline{}
	if !offline {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		market = price.NewClient(cfg.CoinGecko.BaseURL, cfg.CoinGecko.APIKey, cfg.CoinGecko.Timeout)
	}
	return ai.NewPipeline(ai.NewResponder(market, ai.NewRandomFallback(0), log), log), nil
}
