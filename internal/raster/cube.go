package raster

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel-2 band identifiers used throughout the pipeline.
const (
	BandBlue  = "B02"
	BandGreen = "B03"
	BandRed   = "B04"
	BandNIR   = "B08"
)

var (
	ErrShapeMismatch = errors.New("raster bands have mismatched dimensions")
	ErrMissingBand   = errors.New("raster band not present in cube")
	ErrAllNoData     = errors.New("raster contains no valid pixels")
)

// Cube holds a temporally reduced multi-band raster over a shared pixel grid.
// No-data pixels are marked with NaN. A cube is read-only after construction.
type Cube struct {
	bands  map[string][][]float64
	height int
	width  int
}

// NewCube builds a cube from per-band 2D grids. All bands must share
// identical dimensions and rows must be rectangular.
func NewCube(bands map[string][][]float64) (*Cube, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("cube requires at least one band")
	}

	height, width := -1, -1
	for name, grid := range bands {
		h := len(grid)
		if h == 0 {
			return nil, fmt.Errorf("%w: band %s is empty", ErrShapeMismatch, name)
		}
		w := len(grid[0])
		for _, row := range grid {
			if len(row) != w {
				return nil, fmt.Errorf("%w: band %s has ragged rows", ErrShapeMismatch, name)
			}
		}
		if height == -1 {
			height, width = h, w
		} else if h != height || w != width {
			return nil, fmt.Errorf("%w: band %s is %dx%d, expected %dx%d", ErrShapeMismatch, name, h, w, height, width)
		}
	}

	return &Cube{bands: bands, height: height, width: width}, nil
}

// Band returns the grid for the named band.
func (c *Cube) Band(name string) ([][]float64, error) {
	grid, ok := c.bands[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingBand, name)
	}
	return grid, nil
}

// Size returns the shared pixel dimensions of the cube as (height, width).
func (c *Cube) Size() (int, int) {
	return c.height, c.width
}

// NDVI computes the per-pixel normalized difference vegetation index
// (nir-red)/(nir+red). Pixels where the denominator is exactly zero become
// NaN rather than propagating an infinity.
func (c *Cube) NDVI() ([][]float64, error) {
	red, err := c.Band(BandRed)
	if err != nil {
		return nil, err
	}
	nir, err := c.Band(BandNIR)
	if err != nil {
		return nil, err
	}

	ndvi := make([][]float64, c.height)
	for y := 0; y < c.height; y++ {
		ndvi[y] = make([]float64, c.width)
		for x := 0; x < c.width; x++ {
			denominator := nir[y][x] + red[y][x]
			if denominator == 0 {
				ndvi[y][x] = math.NaN()
				continue
			}
			ndvi[y][x] = (nir[y][x] - red[y][x]) / denominator
		}
	}
	return ndvi, nil
}

// NanMean returns the arithmetic mean of a grid ignoring NaN pixels.
// A grid with no valid pixels at all yields ErrAllNoData.
func NanMean(grid [][]float64) (float64, error) {
	var sum float64
	var count int
	for _, row := range grid {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0, ErrAllNoData
	}
	return sum / float64(count), nil
}
