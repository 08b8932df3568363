package notify

import (
	"regexp"
	"strconv"
	"strings"

	"gem-profit/internal/gem"
	"gem-profit/internal/ledger"
)

// Message is a chat notification with formatting codes possibly still present.
// Hover carries the detail block attached to sack summaries.
type Message struct {
	Text  string `json:"text"`
	Hover string `json:"hover,omitempty"`
}

type Kind int

const (
	Unrecognized Kind = iota
	Summary
	SingleItem
)

func (k Kind) String() string {
	switch k {
	case Summary:
		return "summary"
	case SingleItem:
		return "single_item"
	default:
		return "unrecognized"
	}
}

// Event is the structured form of a notification. Lines is set for Summary;
// Gem and Amount for SingleItem (always FLAWED).
type Event struct {
	Kind   Kind
	Lines  []ledger.Line
	Gem    gem.Type
	Amount int64
}

// Parser turns notifications into events so the accounting never sees raw text.
type Parser interface {
	Parse(msg Message) Event
}

var (
	formatCodeRe = regexp.MustCompile(`§[0-9a-fklmnor]`)
	sackHeaderRe = regexp.MustCompile(`^\[Sacks\] \+[0-9,]+ items\. \(Last \d+s\.\)$`)
	sackLineRe   = regexp.MustCompile(`^\+([0-9,]+) . (Rough|Flawed) (\w+) Gemstone \(Gemstones Sack\)$`)
	pristineRe   = regexp.MustCompile(`^PRISTINE! You found . Flawed (\w+) Gemstone x([0-9,]+)!$`)
)

// StripFormatting removes section-sign color and style codes.
func StripFormatting(s string) string {
	return formatCodeRe.ReplaceAllString(s, "")
}

// ChatParser recognizes the sack summary and the pristine pickup message.
type ChatParser struct{}

func (ChatParser) Parse(msg Message) Event {
	text := StripFormatting(msg.Text)
	if sackHeaderRe.MatchString(text) {
		return Event{Kind: Summary, Lines: parseSackDetail(StripFormatting(msg.Hover))}
	}
	m := pristineRe.FindStringSubmatch(text)
	if m == nil {
		return Event{Kind: Unrecognized}
	}
	g, ok := gem.ParseType(m[1])
	if !ok {
		return Event{Kind: Unrecognized}
	}
	n, ok := parseAmount(m[2])
	if !ok {
		return Event{Kind: Unrecognized}
	}
	return Event{Kind: SingleItem, Gem: g, Amount: n}
}

// parseSackDetail reads the hover block. Its first line is a header and its last
// two lines are a footer.
func parseSackDetail(hover string) []ledger.Line {
	rows := strings.Split(hover, "\n")
	if len(rows) < 3 {
		return nil
	}
	var lines []ledger.Line
	for _, row := range rows[1 : len(rows)-2] {
		m := sackLineRe.FindStringSubmatch(strings.TrimSpace(row))
		if m == nil {
			continue
		}
		n, ok := parseAmount(m[1])
		if !ok {
			continue
		}
		tier, _ := gem.ParseTier(m[2])
		g, ok := gem.ParseType(m[3])
		if !ok {
			continue
		}
		lines = append(lines, ledger.Line{Tier: tier, Gem: g, Amount: n})
	}
	return lines
}

func parseAmount(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
