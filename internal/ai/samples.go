package ai

// Sample query categories
const (
	SamplePriceQueries      = "price_queries"
	SampleTrendQueries      = "trend_queries"
	SampleMarketCapQueries  = "market_cap_queries"
	SampleComparisonQueries = "comparison_queries"
	SampleInfoQueries       = "info_queries"
)

// SampleCategories lists the sample categories in display order
var SampleCategories = []string{
	SamplePriceQueries,
	SampleTrendQueries,
	SampleMarketCapQueries,
	SampleComparisonQueries,
	SampleInfoQueries,
}

// GetSampleQueries returns example questions per category. The result is a fresh copy.
func GetSampleQueries() map[string][]string {
	return map[string][]string{
		SamplePriceQueries: {
			"What is the price of Bitcoin?",
			"How much does Ethereum cost?",
			"Current price of DOGE?",
			"What's the value of Solana?",
		},
		SampleTrendQueries: {
			"Show me the 7-day trend of Bitcoin",
			"How has Ethereum performed over the last month?",
			"Bitcoin chart for the past week",
			"Dogecoin performance last 30 days",
		},
		SampleMarketCapQueries: {
			"What is Bitcoin's market cap?",
			"Market capitalization of Ethereum",
			"How big is Solana's market cap?",
		},
		SampleComparisonQueries: {
			"Compare Bitcoin and Ethereum",
			"Bitcoin vs Dogecoin over 7 days",
			"Compare Bitcoin, Ethereum, and Solana performance",
			"Ethereum versus Solana last month",
		},
		SampleInfoQueries: {
			"Tell me about Bitcoin",
			"What is Ethereum?",
			"Info about Dogecoin",
			"Explain Solana",
		},
	}
}
