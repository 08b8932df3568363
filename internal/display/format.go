package display

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"gem-profit/internal/profit"
)

// Number floors v and groups thousands: 1234567.9 -> "1,234,567".
func Number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return humanize.Comma(int64(math.Floor(v)))
}

// Duration renders the non-zero hour, minute and second parts ("1h 1m 1s").
// Anything under a second is shown in milliseconds.
func Duration(d time.Duration) string {
	ms := d.Milliseconds()
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60

	parts := make([]string, 0, 3)
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s > 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%dms", ms)
	}
	return strings.Join(parts, " ")
}

// Lines is the two-line overlay: profit over uptime, then the hourly rate.
func Lines(p profit.Projection, uptime time.Duration) []string {
	return []string{
		fmt.Sprintf("$%s / %s", Number(p.Profit), Duration(uptime)),
		fmt.Sprintf("$/hr: $%s", Number(p.PerHour)),
	}
}
