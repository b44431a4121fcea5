package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoundingBox_Valid(t *testing.T) {
	bbox, err := NewBoundingBox(10, 45, 10.1, 45.1)
	require.NoError(t, err)

	assert.Equal(t, 10.0, bbox.MinLon())
	assert.Equal(t, 45.0, bbox.MinLat())
	assert.Equal(t, 10.1, bbox.MaxLon())
	assert.Equal(t, 45.1, bbox.MaxLat())
}

func TestNewBoundingBox_Invalid(t *testing.T) {
	tests := []struct {
		name                           string
		minLon, minLat, maxLon, maxLat float64
	}{
		{"min lon equals max lon", 10, 45, 10, 45.1},
		{"min lat above max lat", 10, 45.2, 10.1, 45.1},
		{"nan coordinate", math.NaN(), 45, 10.1, 45.1},
		{"infinite coordinate", 10, 45, math.Inf(1), 45.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBoundingBox(tt.minLon, tt.minLat, tt.maxLon, tt.maxLat)
			assert.Error(t, err)
		})
	}
}

func TestBoundingBox_Rounded(t *testing.T) {
	bbox, err := NewBoundingBox(10.00049, 45.00051, 10.10049, 45.10051)
	require.NoError(t, err)

	rounded := bbox.Rounded()
	assert.Equal(t, 10.0, rounded.MinLon())
	assert.Equal(t, 45.001, rounded.MinLat())
	assert.Equal(t, 10.1, rounded.MaxLon())
	assert.Equal(t, 45.101, rounded.MaxLat())

	// The original box is untouched.
	assert.Equal(t, 10.00049, bbox.MinLon())
}

func TestBoundingBox_SampleGrid(t *testing.T) {
	bbox, err := NewBoundingBox(0, 0, 3, 3)
	require.NoError(t, err)

	grid := bbox.SampleGrid(4)
	require.Len(t, grid, 16)

	// Outer loop: latitude top to bottom. Inner loop: longitude left to right.
	assert.Equal(t, Point{Lat: 3, Lon: 0}, grid[0])
	assert.Equal(t, Point{Lat: 3, Lon: 1}, grid[1])
	assert.Equal(t, Point{Lat: 3, Lon: 3}, grid[3])
	assert.Equal(t, Point{Lat: 2, Lon: 0}, grid[4])
	assert.Equal(t, Point{Lat: 0, Lon: 3}, grid[15])
}

func TestBoundingBox_Center(t *testing.T) {
	bbox, err := NewBoundingBox(10, 40, 12, 46)
	require.NoError(t, err)

	center := bbox.Center()
	assert.InDelta(t, 43.0, center.Lat, 1e-9)
	assert.InDelta(t, 11.0, center.Lon, 1e-9)
}

func TestBoundingBox_LeafletBounds(t *testing.T) {
	bbox, err := NewBoundingBox(10, 45, 10.1, 45.1)
	require.NoError(t, err)

	bounds := bbox.LeafletBounds()
	assert.Equal(t, [2][2]float64{{45, 10}, {45.1, 10.1}}, bounds)
}
