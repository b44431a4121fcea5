package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/firewatch/firewatch-risk-api/internal/raster"
)

// reflectanceCeiling is the fixed brightness normalization ceiling. Sentinel-2
// land reflectance rarely exceeds this, so clipping here avoids washed-out
// composites without adaptive stretching.
const reflectanceCeiling = 3000.0

// TrueColor renders the red/green/blue bands of a cube as a PNG composite.
// The alpha channel is derived solely from the red band: 255 where it holds
// valid data, 0 where it is no-data. No-data values in all channels become 0
// before normalization.
func TrueColor(cube *raster.Cube) ([]byte, error) {
	red, err := cube.Band(raster.BandRed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	green, err := cube.Band(raster.BandGreen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	blue, err := cube.Band(raster.BandBlue)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}

	height, width := cube.Size()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			alpha := uint8(255)
			if math.IsNaN(red[y][x]) {
				alpha = 0
			}

			img.SetNRGBA(x, y, color.NRGBA{
				R: scaleReflectance(red[y][x]),
				G: scaleReflectance(green[y][x]),
				B: scaleReflectance(blue[y][x]),
				A: alpha,
			})
		}
	}

	return encodePNG(img)
}

func scaleReflectance(v float64) uint8 {
	if math.IsNaN(v) {
		v = 0
	}
	if v < 0 {
		v = 0
	} else if v > reflectanceCeiling {
		v = reflectanceCeiling
	}
	return uint8(v / reflectanceCeiling * 255)
}
