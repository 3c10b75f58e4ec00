// Package card turns quotes into the strings a card renderer draws.
package card

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"cryptohub/internal/provider"
)

// Card is the render-ready form of one quote.
type Card struct {
	ID     string
	Title  string
	Symbol string
	Price  string // "$65000.00"
	Change string // absolute 24h change, "2.35%"
	Up     bool   // change >= 0
	Spark  string
}

// sparkGlyphs are ordered from lowest to highest sample.
var sparkGlyphs = []rune("▁▂▃▄▅▆▇█")

// FromQuote formats q. A positive width down-samples the trend to at most
// width glyphs.
func FromQuote(q provider.Quote, width int) Card {
	return Card{
		ID:     q.ID,
		Title:  q.Name,
		Symbol: strings.ToUpper(q.Symbol),
		Price:  FormatPrice(q.Price),
		Change: FormatChange(q.PriceChangePercent24h),
		Up:     q.PriceChangePercent24h >= 0,
		Spark:  Sparkline(Downsample(q.Trend, width)),
	}
}

// FormatPrice renders a dollar amount with two decimals.
func FormatPrice(v float64) string {
	return "$" + fixed(v, 2)
}

// FormatChange renders the magnitude of a percent change with two decimals;
// direction is carried separately.
func FormatChange(pct float64) string {
	return fixed(math.Abs(pct), 2) + "%"
}

func fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Sparkline maps samples onto block glyphs between their min and max.
// A flat series renders as a row of middle glyphs.
func Sparkline(samples []float64) string {
	if len(samples) == 0 {
		return ""
	}
	lo, hi := samples[0], samples[0]
	for _, s := range samples[1:] {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}

	var b strings.Builder
	b.Grow(len(samples) * 3)
	top := len(sparkGlyphs) - 1
	for _, s := range samples {
		idx := top / 2
		if hi > lo {
			idx = int(math.Round((s - lo) / (hi - lo) * float64(top)))
		}
		b.WriteRune(sparkGlyphs[idx])
	}
	return b.String()
}

// Downsample averages samples into at most width buckets, keeping order.
// width <= 0 or a short series returns samples unchanged.
func Downsample(samples []float64, width int) []float64 {
	if width <= 0 || len(samples) <= width {
		return samples
	}
	out := make([]float64, width)
	for i := range out {
		start := i * len(samples) / width
		end := (i + 1) * len(samples) / width
		var sum float64
		for _, s := range samples[start:end] {
			sum += s
		}
		out[i] = sum / float64(end-start)
	}
	return out
}
