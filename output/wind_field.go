package output

import (
	"bytes"
	"fmt"
	"math"

	"github.com/firewatch/firewatch-risk-api/internal/weather"
	"github.com/fogleman/gg"
)

// Arrow sizing in pixels. The length grows with wind speed so calm and
// windy points are distinguishable at a glance.
const (
	arrowBaseLength  = 8.0
	arrowSpeedScale  = 1.5
	arrowHeadRadius  = 2.5
	arrowStrokeWidth = 2.0
)

// CreateWindFieldImage draws the retained weather grid as wind arrows on a
// transparent canvas sized to match the raster imagery, so the frontend can
// stack it on the other overlays. Each arrow starts at its grid point and
// points downwind.
func CreateWindFieldImage(summary weather.Summary, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid wind field canvas size %dx%d", width, height)
	}
	if len(summary.Grid) == 0 {
		return nil, fmt.Errorf("weather summary has no grid points to draw")
	}

	minLat, maxLat := summary.Grid[0].Latitude, summary.Grid[0].Latitude
	minLon, maxLon := summary.Grid[0].Longitude, summary.Grid[0].Longitude
	for _, sample := range summary.Grid {
		minLat = math.Min(minLat, sample.Latitude)
		maxLat = math.Max(maxLat, sample.Latitude)
		minLon = math.Min(minLon, sample.Longitude)
		maxLon = math.Max(maxLon, sample.Longitude)
	}
	lonSpan := maxLon - minLon
	latSpan := maxLat - minLat
	if lonSpan == 0 || latSpan == 0 {
		return nil, fmt.Errorf("weather grid is degenerate, cannot place arrows")
	}

	dc := gg.NewContext(width, height)
	dc.SetRGBA255(33, 102, 172, 220)
	dc.SetLineWidth(arrowStrokeWidth)

	for _, sample := range summary.Grid {
		x := (sample.Longitude - minLon) / lonSpan * float64(width-1)
		// Image rows grow downward while latitude grows upward.
		y := (maxLat - sample.Latitude) / latSpan * float64(height-1)

		// Meteorological direction is where the wind comes from; the arrow
		// points the opposite way, downwind.
		rad := (sample.WindDirection + 180) * math.Pi / 180
		length := arrowBaseLength + sample.WindSpeed*arrowSpeedScale
		tipX := x + math.Sin(rad)*length
		tipY := y - math.Cos(rad)*length

		dc.DrawLine(x, y, tipX, tipY)
		dc.Stroke()
		dc.DrawCircle(tipX, tipY, arrowHeadRadius)
		dc.Fill()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode wind field image: %v", err)
	}
	return buf.Bytes(), nil
}
