package ledger

import "gem-profit/internal/gem"

// Line is one (tier, gem, count) entry of a periodic sack summary.
type Line struct {
	Tier   gem.Tier
	Gem    gem.Type
	Amount int64
}

// Ledger accumulates raw drop counts for the current session.
//
// Single-item notifications are credited immediately and remembered as pending;
// the next summary subtracts the pending amount from its FLAWED lines so every
// item is counted once.
type Ledger struct {
	drops   map[gem.Key]int64
	pending map[gem.Type]int64 // FLAWED only
}

func New() *Ledger {
	return &Ledger{
		drops:   make(map[gem.Key]int64),
		pending: make(map[gem.Type]int64),
	}
}

// RecordDrop adds count to key. Non-positive counts are ignored.
func (l *Ledger) RecordDrop(key gem.Key, count int64) {
	if count <= 0 {
		return
	}
	l.drops[key] += count
}

// ApplySingleItem credits an immediate FLAWED pickup and marks it pending reconciliation.
func (l *Ledger) ApplySingleItem(g gem.Type, count int64) {
	if count <= 0 {
		return
	}
	l.pending[g] += count
	l.drops[gem.Key{Tier: gem.Flawed, Gem: g}] += count
}

// ApplySummary adds each line net of already-credited FLAWED pickups, then clears
// the pending credits. A negative net is applied as-is and lowers the total.
func (l *Ledger) ApplySummary(lines []Line) {
	for _, ln := range lines {
		actual := ln.Amount
		if ln.Tier == gem.Flawed {
			actual -= l.pending[ln.Gem]
		}
		if actual == 0 {
			continue
		}
		l.drops[gem.Key{Tier: ln.Tier, Gem: ln.Gem}] += actual
	}
	clear(l.pending)
}

// Pending returns the FLAWED amount credited since the last summary.
func (l *Ledger) Pending(g gem.Type) int64 { return l.pending[g] }

// Snapshot returns a copy of the accumulated totals.
func (l *Ledger) Snapshot() map[gem.Key]int64 {
	out := make(map[gem.Key]int64, len(l.drops))
	for k, v := range l.drops {
		out[k] = v
	}
	return out
}

// Empty reports whether no key holds a non-zero total.
func (l *Ledger) Empty() bool {
	for _, v := range l.drops {
		if v != 0 {
			return false
		}
	}
	return true
}

// Reset drops all totals. Pending credits survive so that a summary arriving after
// an idle reset still nets out pickups that were already counted.
func (l *Ledger) Reset() {
	clear(l.drops)
}
