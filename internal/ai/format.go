package ai

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// money renders v as $X,XXX.XX
func money(v float64) string {
	s := strconv.FormatFloat(math.Abs(v), 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return "$" + s
	}
	sign := ""
	if v < 0 {
		sign = "-"
	}
	return sign + "$" + humanize.Comma(n) + "." + frac
}

// formatPrice uses cents above one dollar and six decimals below
func formatPrice(p float64) string {
	if p >= 1 {
		return money(p)
	}
	return fmt.Sprintf("$%.6f", p)
}

// formatMarketCap scales to billions or millions where possible
func formatMarketCap(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.2f billion", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2f million", v/1e6)
	default:
		return money(v)
	}
}

// direction returns the verb and icon describing a percentage change
func direction(change float64) (string, string) {
	switch {
	case change > 0:
		return "increased", "📈"
	case change < 0:
		return "decreased", "📉"
	default:
		return "remained stable", "➡️"
	}
}

func changeIcon(change float64) string {
	_, icon := direction(change)
	return icon
}

var timeframeDays = map[string]int{
	Timeframe7D:  7,
	Timeframe10D: 10,
	Timeframe14D: 14,
	Timeframe30D: 30,
	Timeframe90D: 90,
	Timeframe1Y:  365,
}

var timeframeLabels = map[string]string{
	Timeframe1D:  "24 hours",
	Timeframe7D:  "7 days",
	Timeframe10D: "10 days",
	Timeframe14D: "14 days",
	Timeframe30D: "30 days",
	Timeframe90D: "90 days",
	Timeframe1Y:  "1 year",
}

// daysFor maps a timeframe code to a history length, defaulting to a week
func daysFor(timeframe string) int {
	if d, ok := timeframeDays[timeframe]; ok {
		return d
	}
	return 7
}

func timeframeLabel(timeframe string) string {
	if l, ok := timeframeLabels[timeframe]; ok {
		return l
	}
	return timeframe
}
