package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$64,123.45", formatPrice(64123.45))
	assert.Equal(t, "$1.00", formatPrice(1))
	assert.Equal(t, "$0.081234", formatPrice(0.081234))
	assert.Equal(t, "$1,234,567.90", formatPrice(1234567.899))
}

func TestFormatMarketCap(t *testing.T) {
	assert.Equal(t, "$1250.00 billion", formatMarketCap(1.25e12))
	assert.Equal(t, "$5.00 million", formatMarketCap(5e6))
	assert.Equal(t, "$999.00", formatMarketCap(999))
}

func TestDirection(t *testing.T) {
	verb, icon := direction(2)
	assert.Equal(t, "increased", verb)
	assert.Equal(t, "📈", icon)

	verb, icon = direction(-2)
	assert.Equal(t, "decreased", verb)
	assert.Equal(t, "📉", icon)

	verb, icon = direction(0)
	assert.Equal(t, "remained stable", verb)
	assert.Equal(t, "➡️", icon)
}

func TestTimeframeHelpers(t *testing.T) {
	assert.Equal(t, 30, daysFor(Timeframe30D))
	assert.Equal(t, 365, daysFor(Timeframe1Y))
	assert.Equal(t, 7, daysFor("bogus"))
	assert.Equal(t, "24 hours", timeframeLabel(Timeframe1D))
	assert.Equal(t, "1 year", timeframeLabel(Timeframe1Y))
}
