package tracker

import (
	"time"

	"github.com/shopspring/decimal"

	"gem-profit/internal/display"
	"gem-profit/internal/ledger"
	"gem-profit/internal/notify"
	"gem-profit/internal/pricing"
	"gem-profit/internal/profit"
	"gem-profit/internal/session"
)

// Overlay is what gets shown for the current session. Lines is empty when there
// is nothing to show.
type Overlay struct {
	Active  bool          `json:"active"`
	Lines   []string      `json:"lines"`
	Profit  float64       `json:"profit"`
	PerHour float64       `json:"perHour"`
	Uptime  time.Duration `json:"uptimeNs"`
}

// Tracker owns all session state: prices, drops, pending credits and the clock.
// It is not safe for concurrent use; one goroutine feeds it every input.
type Tracker struct {
	prices  *pricing.Table
	drops   *ledger.Ledger
	clock   *session.Clock
	parser  notify.Parser
	overlay Overlay
}

func New(unitFee decimal.Decimal, idle time.Duration, parser notify.Parser) *Tracker {
	if parser == nil {
		parser = notify.ChatParser{}
	}
	return &Tracker{
		prices: pricing.NewTable(unitFee),
		drops:  ledger.New(),
		clock:  session.NewClock(idle),
		parser: parser,
	}
}

// OnSnapshot replaces the price table.
func (t *Tracker) OnSnapshot(snap pricing.Snapshot) {
	t.prices.Rebuild(snap)
}

// OnNotification parses msg and applies it. It reports whether msg was recognized.
func (t *Tracker) OnNotification(msg notify.Message, now time.Time) bool {
	return t.OnDropEvent(t.parser.Parse(msg), now)
}

// OnDropEvent applies a parsed event. Unrecognized events change nothing.
func (t *Tracker) OnDropEvent(ev notify.Event, now time.Time) bool {
	switch ev.Kind {
	case notify.Summary:
		t.drops.ApplySummary(ev.Lines)
	case notify.SingleItem:
		t.drops.ApplySingleItem(ev.Gem, ev.Amount)
	default:
		return false
	}

	// Only drops open a session; a net-zero event just counts as activity.
	if t.drops.Empty() {
		t.clock.Touch(now)
	} else {
		t.clock.OnActivity(now)
	}
	return true
}

// OnTick closes an idle session and recomputes the overlay.
func (t *Tracker) OnTick(now time.Time) Overlay {
	if t.clock.CheckIdle(now) {
		t.drops.Reset()
		t.overlay = Overlay{}
		return t.overlay
	}

	elapsed, open := t.clock.Elapsed(now)
	if !open {
		return t.overlay
	}
	// Keep the last overlay until prices are known.
	if !t.prices.Ready() {
		return t.overlay
	}

	p := profit.Project(t.drops.Snapshot(), t.prices, elapsed)
	t.overlay = Overlay{
		Active:  true,
		Lines:   display.Lines(p, elapsed),
		Profit:  p.Profit,
		PerHour: p.PerHour,
		Uptime:  elapsed,
	}
	return t.overlay
}

// Project returns the current figures; false when no session is open.
func (t *Tracker) Project(now time.Time) (profit.Projection, bool) {
	elapsed, open := t.clock.Elapsed(now)
	if !open {
		return profit.Projection{}, false
	}
	return profit.Project(t.drops.Snapshot(), t.prices, elapsed), true
}

func (t *Tracker) Quotes() []pricing.Quote { return t.prices.Quotes() }

func (t *Tracker) Prices() *pricing.Table { return t.prices }

func (t *Tracker) Ledger() *ledger.Ledger { return t.drops }

func (t *Tracker) Clock() *session.Clock { return t.clock }
