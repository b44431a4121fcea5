package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
)

// ErrRenderFailure marks an input array the renderers cannot encode.
var ErrRenderFailure = errors.New("render failure")

// Classified NDVI overlay palette. All buckets share the same alpha so the
// base map stays visible underneath.
var (
	colorSparseVegetation   = color.NRGBA{R: 215, G: 48, B: 39, A: 160}
	colorModerateVegetation = color.NRGBA{R: 253, G: 231, B: 37, A: 160}
	colorDenseVegetation    = color.NRGBA{R: 26, G: 152, B: 80, A: 160}
)

// NDVIOverlay renders a vegetation index array as a classified transparent
// PNG. No-data pixels take the -1.0 sentinel, which lands them in the lowest
// bucket. Values are mapped [-1,1] -> [0,255] (truncating cast) and split
// into three buckets: v < 128, 128 <= v < 192, v >= 192.
func NDVIOverlay(ndvi [][]float64) ([]byte, error) {
	height, width, err := gridSize(ndvi)
	if err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			value := ndvi[y][x]
			if math.IsNaN(value) {
				value = -1.0
			}

			normalized := (value + 1) / 2
			if normalized < 0 {
				normalized = 0
			} else if normalized > 1 {
				normalized = 1
			}
			v := uint8(normalized * 255)

			switch {
			case v < 128:
				img.SetNRGBA(x, y, colorSparseVegetation)
			case v < 192:
				img.SetNRGBA(x, y, colorModerateVegetation)
			default:
				img.SetNRGBA(x, y, colorDenseVegetation)
			}
		}
	}

	return encodePNG(img)
}

func gridSize(grid [][]float64) (height, width int, err error) {
	height = len(grid)
	if height == 0 {
		return 0, 0, fmt.Errorf("%w: empty input array", ErrRenderFailure)
	}
	width = len(grid[0])
	if width == 0 {
		return 0, 0, fmt.Errorf("%w: empty input rows", ErrRenderFailure)
	}
	for _, row := range grid {
		if len(row) != width {
			return 0, 0, fmt.Errorf("%w: ragged input rows", ErrRenderFailure)
		}
	}
	return height, width, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	return buf.Bytes(), nil
}
