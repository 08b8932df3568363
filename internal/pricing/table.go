package pricing

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"gem-profit/internal/gem"
)

// DefaultUnitFee is the flat amount subtracted from every buy price before normalization.
var DefaultUnitFee = decimal.New(1, -1)

// QuickStatus is the part of a bazaar product record the table reads. Unknown fields are ignored.
type QuickStatus struct {
	ProductID string          `json:"productId"`
	BuyPrice  decimal.Decimal `json:"buyPrice"`
	SellPrice decimal.Decimal `json:"sellPrice"`
}

type Product struct {
	ProductID   string      `json:"product_id"`
	QuickStatus QuickStatus `json:"quick_status"`
}

// Snapshot maps market product ids to their records.
type Snapshot map[string]Product

// Quote is the best known price for one gem type, per FINE-equivalent unit.
type Quote struct {
	Gem          gem.Type        `json:"gem"`
	Tier         gem.Tier        `json:"tier"` // FINE or FLAWLESS
	PricePerFine decimal.Decimal `json:"pricePerFine"`
}

// Table holds the best quote per gem from the most recent snapshot only.
type Table struct {
	fee   decimal.Decimal
	best  map[gem.Type]Quote
	ready bool
}

func NewTable(unitFee decimal.Decimal) *Table {
	return &Table{
		fee:  unitFee,
		best: make(map[gem.Type]Quote),
	}
}

// Rebuild replaces the table contents with quotes derived from snap.
func (t *Table) Rebuild(snap Snapshot) {
	clear(t.best)
	t.ready = true

	// Sorted ids make "first seen wins" on equal prices deterministic.
	ids := make([]string, 0, len(snap))
	for id := range snap {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		key, ok := gem.ParseProductID(id)
		if !ok || !key.Tier.Tradable() {
			continue
		}
		price := snap[id].QuickStatus.BuyPrice.Sub(t.fee).Mul(key.Tier.Divisor())
		// Strictly greater than the current best, which starts at zero.
		cur, ok := t.best[key.Gem]
		if !price.IsPositive() || (ok && !price.GreaterThan(cur.PricePerFine)) {
			continue
		}
		t.best[key.Gem] = Quote{Gem: key.Gem, Tier: key.Tier, PricePerFine: price}
	}
}

// BestPrice returns the quote for g; false means g cannot be priced right now.
func (t *Table) BestPrice(g gem.Type) (Quote, bool) {
	q, ok := t.best[g]
	return q, ok
}

// PricePerFine satisfies profit.PriceSource.
func (t *Table) PricePerFine(g gem.Type) (float64, bool) {
	q, ok := t.best[g]
	if !ok {
		return 0, false
	}
	return q.PricePerFine.InexactFloat64(), true
}

// Quotes returns all quotes ordered by gem name.
func (t *Table) Quotes() []Quote {
	out := make([]Quote, 0, len(t.best))
	for _, q := range t.best {
		out = append(out, q)
	}
	slices.SortFunc(out, func(a, b Quote) int { return cmp.Compare(a.Gem, b.Gem) })
	return out
}

// Ready reports whether any snapshot has been applied.
func (t *Table) Ready() bool { return t.ready }
