package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantileBreaks(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	breaks := QuantileBreaks(values, 5)

	require.Len(t, breaks, 5)
	assert.Equal(t, []float64{30, 50, 70, 90, 100}, breaks)
}

func TestQuantileBreaksUnsortedInput(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	shuffled := []float64{70, 10, 100, 40, 90, 20, 60, 30, 80, 50}

	assert.Equal(t, QuantileBreaks(sorted, 5), QuantileBreaks(shuffled, 5))

	// input must not be reordered
	assert.Equal(t, []float64{70, 10, 100, 40, 90, 20, 60, 30, 80, 50}, shuffled)
}

func TestQuantileBreaksLastIsMax(t *testing.T) {
	breaks := QuantileBreaks([]float64{3.5, 1.2, 9.9, 4.4, 2.2, 8.8, 5.5}, 5)
	require.Len(t, breaks, 5)
	assert.Equal(t, 9.9, breaks[len(breaks)-1])
}

func TestQuantileBreaksFewerValuesThanClasses(t *testing.T) {
	breaks := QuantileBreaks([]float64{1, 2, 3}, 5)

	require.Len(t, breaks, 5)
	// step truncates to zero, so intermediate breaks clamp to the minimum
	// and the final break is still the maximum
	assert.Equal(t, []float64{1, 1, 1, 1, 3}, breaks)
}

func TestQuantileBreaksIdenticalValues(t *testing.T) {
	breaks := QuantileBreaks([]float64{7, 7, 7, 7, 7, 7}, 5)

	require.Len(t, breaks, 5)
	for _, b := range breaks {
		assert.Equal(t, 7.0, b)
	}
}

func TestQuantileBreaksSingleValue(t *testing.T) {
	breaks := QuantileBreaks([]float64{42}, 5)
	require.Len(t, breaks, 5)
	assert.Equal(t, []float64{42, 42, 42, 42, 42}, breaks)
}

func TestQuantileBreaksAscending(t *testing.T) {
	breaks := QuantileBreaks([]float64{5, 3, 8, 1, 9, 2, 7, 4, 6, 10, 12, 15}, 5)
	for i := 1; i < len(breaks); i++ {
		assert.LessOrEqual(t, breaks[i-1], breaks[i])
	}
}
