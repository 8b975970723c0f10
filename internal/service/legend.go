package service

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// LegendEntry is one classed range of the legend, derived on demand from
// the thematic state rather than stored.
type LegendEntry struct {
	From  float64 `json:"from" doc:"Range start (inclusive of previous break)"`
	To    float64 `json:"to" doc:"Range end (the class break)"`
	Color string  `json:"color" doc:"Swatch color (CSS)"`
	Label string  `json:"label" doc:"Formatted range label"`
}

// legendPrinter formats break values with Brazilian grouping and at most
// one fractional digit.
var legendPrinter = message.NewPrinter(language.BrazilianPortuguese)

// LegendEntries derives one entry per class from the active state: entry i
// spans from the previous break to breaks[i], swatched with palette[i].
// The first entry starts at 0, not the data minimum; the original map drew
// it that way and existing legends depend on it. Returns nil when no
// attribute is active.
func LegendEntries(state ThematicState) []LegendEntry {
	if !state.Active() {
		return nil
	}

	entries := make([]LegendEntry, len(state.Breaks))
	prev := 0.0
	for i, b := range state.Breaks {
		entries[i] = LegendEntry{
			From:  prev,
			To:    b,
			Color: state.Palette[i],
			Label: formatBreak(prev) + " – " + formatBreak(b),
		}
		prev = b
	}
	return entries
}

func formatBreak(v float64) string {
	return legendPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(1)))
}
