package render

import (
	"image/color"
	"math"
	"testing"

	"github.com/firewatch/firewatch-risk-api/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCube(t *testing.T, red, green, blue [][]float64) *raster.Cube {
	t.Helper()
	cube, err := raster.NewCube(map[string][][]float64{
		raster.BandRed:   red,
		raster.BandGreen: green,
		raster.BandBlue:  blue,
	})
	require.NoError(t, err)
	return cube
}

func TestTrueColor_AlphaFollowsRedBandOnly(t *testing.T) {
	nan := math.NaN()
	cube := testCube(t,
		[][]float64{{nan, 1500}},
		[][]float64{{3000, nan}}, // green no-data must not affect alpha
		[][]float64{{3000, 750}},
	)

	data, err := TrueColor(cube)
	require.NoError(t, err)
	img := decodePNG(t, data)

	// Red no-data: transparent, all channels zeroed.
	assert.Equal(t, color.NRGBA{R: 0, G: 255, B: 255, A: 0}, nrgbaAt(img, 0, 0))
	// Red valid: opaque even though green is no-data.
	assert.Equal(t, color.NRGBA{R: 127, G: 0, B: 63, A: 255}, nrgbaAt(img, 1, 0))
}

func TestTrueColor_AllRedNoDataIsFullyTransparent(t *testing.T) {
	nan := math.NaN()
	cube := testCube(t,
		[][]float64{{nan, nan}, {nan, nan}},
		[][]float64{{100, 200}, {300, 400}},
		[][]float64{{500, 600}, {700, 800}},
	)

	data, err := TrueColor(cube)
	require.NoError(t, err)
	img := decodePNG(t, data)

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			assert.Equal(t, uint8(0), nrgbaAt(img, x, y).A)
		}
	}
}

func TestTrueColor_ClipCeiling(t *testing.T) {
	cube := testCube(t,
		[][]float64{{3000, 9999}},
		[][]float64{{3000, 4500}},
		[][]float64{{3000, 3001}},
	)

	data, err := TrueColor(cube)
	require.NoError(t, err)
	img := decodePNG(t, data)

	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, nrgbaAt(img, 0, 0))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, nrgbaAt(img, 1, 0))
}

func TestTrueColor_NegativeReflectanceClipsToZero(t *testing.T) {
	cube := testCube(t,
		[][]float64{{-50}},
		[][]float64{{-1}},
		[][]float64{{0}},
	)

	data, err := TrueColor(cube)
	require.NoError(t, err)
	img := decodePNG(t, data)

	assert.Equal(t, color.NRGBA{R: 0, G: 0, B: 0, A: 255}, nrgbaAt(img, 0, 0))
}

func TestTrueColor_MissingBand(t *testing.T) {
	cube, err := raster.NewCube(map[string][][]float64{
		raster.BandRed: {{1}},
		raster.BandNIR: {{2}},
	})
	require.NoError(t, err)

	_, err = TrueColor(cube)
	assert.ErrorIs(t, err, ErrRenderFailure)
}
