package gem

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Type is a gemstone species as it appears in product ids ("RUBY", "JADE", ...).
type Type string

const (
	Ruby       Type = "RUBY"
	Amber      Type = "AMBER"
	Sapphire   Type = "SAPPHIRE"
	Jade       Type = "JADE"
	Amethyst   Type = "AMETHYST"
	Topaz      Type = "TOPAZ"
	Jasper     Type = "JASPER"
	Opal       Type = "OPAL"
	Aquamarine Type = "AQUAMARINE"
	Citrine    Type = "CITRINE"
	Onyx       Type = "ONYX"
	Peridot    Type = "PERIDOT"
)

var knownTypes = map[Type]bool{
	Ruby: true, Amber: true, Sapphire: true, Jade: true, Amethyst: true, Topaz: true,
	Jasper: true, Opal: true, Aquamarine: true, Citrine: true, Onyx: true, Peridot: true,
}

// ParseType maps a gem name case-insensitively ("Sapphire", "sapphire") to a Type.
func ParseType(name string) (Type, bool) {
	t := Type(strings.ToUpper(strings.TrimSpace(name)))
	if !knownTypes[t] {
		return "", false
	}
	return t, true
}

// Tier is the quality grade of a gemstone. Values are ordered ROUGH < FLAWED < FINE < FLAWLESS.
type Tier int

const (
	Rough Tier = iota
	Flawed
	Fine
	Flawless
)

var tierNames = [...]string{"ROUGH", "FLAWED", "FINE", "FLAWLESS"}

// divisors: how many units of a tier make one FINE-equivalent unit.
var divisors = [...]decimal.Decimal{
	decimal.NewFromInt(6400),
	decimal.NewFromInt(80),
	decimal.NewFromInt(1),
	decimal.New(125, -4), // 1/80
}

func (t Tier) String() string {
	if t < Rough || t > Flawless {
		return "UNKNOWN"
	}
	return tierNames[t]
}

func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// ParseTier accepts "ROUGH", "Flawed", "fine", ...
func ParseTier(s string) (Tier, bool) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range tierNames {
		if n == up {
			return Tier(i), true
		}
	}
	return 0, false
}

// Divisor is exact. A raw count divided by it gives FINE-equivalent units; a per-item
// price multiplied by it gives the price of one FINE-equivalent unit.
func (t Tier) Divisor() decimal.Decimal {
	return divisors[t]
}

// DivisorFloat is Divisor for the float accumulation path.
func (t Tier) DivisorFloat() float64 {
	return divisors[t].InexactFloat64()
}

// Tradable reports whether the market quotes this tier.
func (t Tier) Tradable() bool {
	return t == Fine || t == Flawless
}

// Key identifies one accumulator in the drop ledger.
type Key struct {
	Tier Tier `json:"tier"`
	Gem  Type `json:"gem"`
}

// ProductID renders the market identifier, e.g. FLAWED_RUBY_GEM.
func (k Key) ProductID() string {
	return k.Tier.String() + "_" + string(k.Gem) + "_GEM"
}

// ParseProductID accepts exactly <TIER>_<GEM>_GEM with a known tier and gem.
func ParseProductID(id string) (Key, bool) {
	parts := strings.Split(id, "_")
	if len(parts) != 3 || parts[2] != "GEM" {
		return Key{}, false
	}
	tier, ok := ParseTier(parts[0])
	if !ok || parts[0] != tier.String() {
		return Key{}, false
	}
	g, ok := ParseType(parts[1])
	if !ok || parts[1] != string(g) {
		return Key{}, false
	}
	return Key{Tier: tier, Gem: g}, true
}
