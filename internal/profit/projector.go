package profit

import (
	"time"

	"gem-profit/internal/gem"
)

const msPerHour = 3_600_000

// PriceSource yields the price of one FINE-equivalent unit of a gem.
type PriceSource interface {
	PricePerFine(g gem.Type) (float64, bool)
}

// Projection is the session profit and its hourly extrapolation, unrounded.
type Projection struct {
	Profit  float64 `json:"profit"`
	PerHour float64 `json:"perHour"`
}

// FineEquivalents converts raw counts to FINE-equivalent units per gem.
func FineEquivalents(drops map[gem.Key]int64) map[gem.Type]float64 {
	out := make(map[gem.Type]float64)
	for k, n := range drops {
		out[k.Gem] += float64(n) / k.Tier.DivisorFloat()
	}
	return out
}

// Project prices the drops and scales the total to one hour of elapsed time.
// Gems without a positive price contribute nothing.
func Project(drops map[gem.Key]int64, prices PriceSource, elapsed time.Duration) Projection {
	var p Projection
	for g, amount := range FineEquivalents(drops) {
		if amount == 0 {
			continue
		}
		price, ok := prices.PricePerFine(g)
		if !ok || price == 0 {
			continue
		}
		p.Profit += amount * price
	}
	ms := float64(elapsed.Milliseconds())
	if ms <= 0 {
		return p
	}
	p.PerHour = p.Profit * (msPerHour / ms)
	return p
}
