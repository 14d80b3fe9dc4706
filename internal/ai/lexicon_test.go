package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCoinName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MATIC", "polygon"},
		{"btc", "bitcoin"},
		{" Ether ", "ethereum"},
		{"SHIB", "shiba-inu"},
		{"shiba inu", "shiba-inu"},
		{"Bitcoin", "bitcoin"},
		{"Tether", "tether"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCoinName(tt.in))
		})
	}
}

func TestLexicon_ProviderID(t *testing.T) {
	lex := DefaultLexicon()
	assert.Equal(t, "matic-network", lex.ProviderID("polygon"))
	assert.Equal(t, "avalanche-2", lex.ProviderID("avalanche"))
	assert.Equal(t, "bitcoin", lex.ProviderID("bitcoin"))
	assert.Equal(t, "tether", lex.ProviderID("tether"))
}

func TestLexicon_CoinsAreCopies(t *testing.T) {
	lex := DefaultLexicon()
	coins := lex.Coins()
	assert.Len(t, coins, 12)

	coins[0].Name = "changed"
	c, ok := lex.Coin("bitcoin")
	assert.True(t, ok)
	assert.Equal(t, "Bitcoin", c.Name)
}

func TestLexicon_TimeframeCodesAreClosed(t *testing.T) {
	valid := map[string]bool{"1d": true, "7d": true, "10d": true, "14d": true, "30d": true, "90d": true, "1y": true}
	for _, p := range DefaultLexicon().timeframes {
		assert.True(t, valid[p.code], "phrase %q maps to %q", p.text, p.code)
	}
}
