package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"gem-profit/internal/gem"
)

func product(buy string) Product {
	return Product{QuickStatus: QuickStatus{BuyPrice: decimal.RequireFromString(buy)}}
}

func TestRebuildPicksBestNormalizedTier(t *testing.T) {
	tbl := NewTable(DefaultUnitFee)
	tbl.Rebuild(Snapshot{
		"FINE_RUBY_GEM":      product("5000.1"),   // 5000 per fine
		"FLAWLESS_RUBY_GEM":  product("480000.1"), // 6000 per fine
		"FINE_JADE_GEM":      product("3000.1"),   // 3000 per fine
		"FLAWLESS_JADE_GEM":  product("160000.1"), // 2000 per fine
		"FLAWED_RUBY_GEM":    product("999999"),   // not traded
		"ROUGH_RUBY_GEM":     product("999999"),
		"ENCHANTED_DIAMOND":  product("10"),
		"FINE_DIAMOND_GEM":   product("10"),
		"PERFECT_RUBY_GEM":   product("99999999"),
		"FINE_AMBER_GEM_OLD": product("10"),
	})

	q, ok := tbl.BestPrice(gem.Ruby)
	if !ok {
		t.Fatal("ruby should be priced")
	}
	if q.Tier != gem.Flawless || !q.PricePerFine.Equal(decimal.NewFromInt(6000)) {
		t.Fatalf("ruby got %s %s want FLAWLESS 6000", q.Tier, q.PricePerFine)
	}

	q, ok = tbl.BestPrice(gem.Jade)
	if !ok || q.Tier != gem.Fine || !q.PricePerFine.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("jade got %+v", q)
	}

	if _, ok := tbl.BestPrice(gem.Amber); ok {
		t.Fatal("amber has no valid quote")
	}
	if len(tbl.Quotes()) != 2 {
		t.Fatalf("quotes got %d want 2", len(tbl.Quotes()))
	}
}

func TestRebuildOnlyTradableTiers(t *testing.T) {
	tbl := NewTable(DefaultUnitFee)
	snap := Snapshot{}
	for _, g := range []string{"RUBY", "AMBER", "SAPPHIRE", "JADE", "AMETHYST", "TOPAZ"} {
		for _, tier := range []string{"ROUGH", "FLAWED", "FINE", "FLAWLESS"} {
			snap[tier+"_"+g+"_GEM"] = product("123456.7")
		}
	}
	tbl.Rebuild(snap)
	for _, q := range tbl.Quotes() {
		if !q.Tier.Tradable() {
			t.Fatalf("%s quoted from %s", q.Gem, q.Tier)
		}
	}
}

func TestRebuildReplacesPreviousSnapshot(t *testing.T) {
	tbl := NewTable(DefaultUnitFee)
	tbl.Rebuild(Snapshot{"FINE_OPAL_GEM": product("100")})
	if _, ok := tbl.BestPrice(gem.Opal); !ok {
		t.Fatal("opal missing")
	}
	tbl.Rebuild(Snapshot{"FINE_ONYX_GEM": product("100")})
	if _, ok := tbl.BestPrice(gem.Opal); ok {
		t.Fatal("opal should be gone after rebuild")
	}
	if _, ok := tbl.BestPrice(gem.Onyx); !ok {
		t.Fatal("onyx missing")
	}
}

func TestRebuildIgnoresNonPositivePrices(t *testing.T) {
	tbl := NewTable(DefaultUnitFee)
	tbl.Rebuild(Snapshot{
		"FINE_TOPAZ_GEM":     product("0.1"),
		"FLAWLESS_TOPAZ_GEM": product("0"),
	})
	if _, ok := tbl.BestPrice(gem.Topaz); ok {
		t.Fatal("fee-eaten price should not be quoted")
	}
	if !tbl.Ready() {
		t.Fatal("table should be ready after a rebuild")
	}
}

func TestPricePerFine(t *testing.T) {
	tbl := NewTable(DefaultUnitFee)
	tbl.Rebuild(Snapshot{"FINE_SAPPHIRE_GEM": product("5.1")})
	p, ok := tbl.PricePerFine(gem.Sapphire)
	if !ok || p != 5.0 {
		t.Fatalf("got %v %v want 5", p, ok)
	}
}
