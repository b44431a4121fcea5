package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCube_ShapeMismatch(t *testing.T) {
	_, err := NewCube(map[string][][]float64{
		BandRed: {{1, 2}, {3, 4}},
		BandNIR: {{1, 2, 3}, {4, 5, 6}},
	})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestNewCube_RaggedRows(t *testing.T) {
	_, err := NewCube(map[string][][]float64{
		BandRed: {{1, 2}, {3}},
	})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestCube_Size(t *testing.T) {
	cube, err := NewCube(map[string][][]float64{
		BandRed: {{1, 2, 3}, {4, 5, 6}},
	})
	require.NoError(t, err)

	h, w := cube.Size()
	assert.Equal(t, 2, h)
	assert.Equal(t, 3, w)
}

func TestCube_NDVI_ExactValues(t *testing.T) {
	cube, err := NewCube(map[string][][]float64{
		BandRed: {{100, 200}, {500, 0}},
		BandNIR: {{300, 600}, {500, 1000}},
	})
	require.NoError(t, err)

	ndvi, err := cube.NDVI()
	require.NoError(t, err)

	assert.Equal(t, (300.0-100.0)/(300.0+100.0), ndvi[0][0])
	assert.Equal(t, (600.0-200.0)/(600.0+200.0), ndvi[0][1])
	assert.Equal(t, 0.0, ndvi[1][0])
	assert.Equal(t, 1.0, ndvi[1][1])
}

func TestCube_NDVI_ZeroDenominatorYieldsNoData(t *testing.T) {
	cube, err := NewCube(map[string][][]float64{
		BandRed: {{0, 100}},
		BandNIR: {{0, 300}},
	})
	require.NoError(t, err)

	ndvi, err := cube.NDVI()
	require.NoError(t, err)

	assert.True(t, math.IsNaN(ndvi[0][0]))
	assert.False(t, math.IsNaN(ndvi[0][1]))
}

func TestCube_NDVI_MissingBand(t *testing.T) {
	cube, err := NewCube(map[string][][]float64{
		BandRed: {{1}},
	})
	require.NoError(t, err)

	_, err = cube.NDVI()
	assert.ErrorIs(t, err, ErrMissingBand)
}

func TestNanMean_IgnoresNoData(t *testing.T) {
	mean, err := NanMean([][]float64{
		{0.2, math.NaN()},
		{0.6, math.NaN()},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.4, mean, 1e-12)
}

func TestNanMean_AllNoData(t *testing.T) {
	_, err := NanMean([][]float64{
		{math.NaN(), math.NaN()},
	})
	assert.ErrorIs(t, err, ErrAllNoData)
}
