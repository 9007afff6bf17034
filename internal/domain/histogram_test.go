package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHistogram(t *testing.T) {
	bins := BuildHistogram([]float64{0, 1, 2, 3, 4, 10}, 5)
	require.Len(t, bins, 5)

	assert.Equal(t, 0.0, bins[0].Min)
	assert.Equal(t, 2.0, bins[0].Max)
	assert.Equal(t, int64(2), bins[0].Count)
	assert.Equal(t, int64(2), bins[1].Count)
	assert.Equal(t, int64(1), bins[2].Count)
	assert.Equal(t, int64(0), bins[3].Count)
	assert.Equal(t, int64(1), bins[4].Count, "maximum lands in the last bin")
	assert.Equal(t, 10.0, bins[4].Max)

	var total int64
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, int64(6), total)
}

func TestBuildHistogram_Degenerate(t *testing.T) {
	assert.Nil(t, BuildHistogram(nil, 10))
	assert.Nil(t, BuildHistogram([]float64{1}, 0))

	bins := BuildHistogram([]float64{5.2, 5.2, 5.2}, 10)
	require.Len(t, bins, 1)
	assert.Equal(t, HistogramBin{Min: 5.2, Max: 5.2, Count: 3}, bins[0])
}
