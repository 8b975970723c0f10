package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegendEntriesInactive(t *testing.T) {
	assert.Nil(t, LegendEntries(ThematicState{}))
}

func TestLegendEntries(t *testing.T) {
	state := ThematicState{
		Attribute: "population",
		Breaks:    []float64{30, 50, 70, 90, 100},
		Palette:   SequentialYlOrRd5,
	}

	entries := LegendEntries(state)
	require.Len(t, entries, 5)

	// the first range starts at zero, not at the data minimum
	assert.Equal(t, 0.0, entries[0].From)
	assert.Equal(t, 30.0, entries[0].To)
	assert.Equal(t, "0 – 30", entries[0].Label)

	// ranges chain: each From is the previous To
	for i := 1; i < len(entries); i++ {
		assert.Equal(t, entries[i-1].To, entries[i].From)
	}

	// swatches follow the palette in order
	for i, e := range entries {
		assert.Equal(t, SequentialYlOrRd5[i], e.Color)
	}
}

func TestLegendLabelsBrazilianFormat(t *testing.T) {
	state := ThematicState{
		Attribute: "population",
		Breaks:    []float64{1234.5, 2500, 10000.5, 50000, 123456},
		Palette:   SequentialYlOrRd5,
	}

	entries := LegendEntries(state)
	require.Len(t, entries, 5)

	// dot thousands separator, comma decimals, at most one fraction digit
	assert.Equal(t, "0 – 1.234,5", entries[0].Label)
	assert.Equal(t, "1.234,5 – 2.500", entries[1].Label)
	assert.Equal(t, "2.500 – 10.000,5", entries[2].Label)
	assert.Equal(t, "50.000 – 123.456", entries[4].Label)
}
