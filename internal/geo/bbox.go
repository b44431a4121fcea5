package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// keyPrecision is the number of decimal places a bounding box is rounded to
// before being used as a cache key. At the equator 3 decimals is roughly 111m,
// well below the resolution of a single analysis request.
const keyPrecision = 3

// Point is a geographic coordinate pair.
type Point struct {
	Lat float64
	Lon float64
}

// BoundingBox is an immutable geographic bounding box in EPSG:4326,
// ordered (min_lon, min_lat, max_lon, max_lat).
type BoundingBox struct {
	bound orb.Bound
}

// NewBoundingBox validates and builds a bounding box from its four corners.
func NewBoundingBox(minLon, minLat, maxLon, maxLat float64) (BoundingBox, error) {
	for _, v := range []float64{minLon, minLat, maxLon, maxLat} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return BoundingBox{}, fmt.Errorf("bounding box coordinates must be finite, got [%f %f %f %f]", minLon, minLat, maxLon, maxLat)
		}
	}
	if minLon >= maxLon || minLat >= maxLat {
		return BoundingBox{}, fmt.Errorf("bounding box min must be smaller than max on both axes, got [%f %f %f %f]", minLon, minLat, maxLon, maxLat)
	}
	return BoundingBox{bound: orb.Bound{
		Min: orb.Point{minLon, minLat},
		Max: orb.Point{maxLon, maxLat},
	}}, nil
}

func (b BoundingBox) MinLon() float64 { return b.bound.Min[0] }
func (b BoundingBox) MinLat() float64 { return b.bound.Min[1] }
func (b BoundingBox) MaxLon() float64 { return b.bound.Max[0] }
func (b BoundingBox) MaxLat() float64 { return b.bound.Max[1] }

// Slice returns the box as [min_lon, min_lat, max_lon, max_lat].
func (b BoundingBox) Slice() [4]float64 {
	return [4]float64{b.MinLon(), b.MinLat(), b.MaxLon(), b.MaxLat()}
}

// Center returns the geographic center of the box.
func (b BoundingBox) Center() Point {
	center := b.bound.Center()
	return Point{Lat: center[1], Lon: center[0]}
}

// Rounded returns a copy of the box with all corners rounded to the fixed
// cache-key precision.
func (b BoundingBox) Rounded() BoundingBox {
	return BoundingBox{bound: orb.Bound{
		Min: orb.Point{roundTo(b.MinLon(), keyPrecision), roundTo(b.MinLat(), keyPrecision)},
		Max: orb.Point{roundTo(b.MaxLon(), keyPrecision), roundTo(b.MaxLat(), keyPrecision)},
	}}
}

// SampleGrid returns an n by n grid of points spanning the box, latitudes
// running from max to min (top to bottom) in the outer loop and longitudes
// from min to max (left to right) in the inner loop.
func (b BoundingBox) SampleGrid(n int) []Point {
	lats := linspace(b.MaxLat(), b.MinLat(), n)
	lons := linspace(b.MinLon(), b.MaxLon(), n)

	points := make([]Point, 0, n*n)
	for _, lat := range lats {
		for _, lon := range lons {
			points = append(points, Point{Lat: lat, Lon: lon})
		}
	}
	return points
}

// LeafletBounds returns the box corners in the [[min_lat, min_lon],
// [max_lat, max_lon]] order the map frontend expects.
func (b BoundingBox) LeafletBounds() [2][2]float64 {
	return [2][2]float64{
		{b.MinLat(), b.MinLon()},
		{b.MaxLat(), b.MaxLon()},
	}
}

func linspace(start, stop float64, n int) []float64 {
	if n == 1 {
		return []float64{start}
	}
	step := (stop - start) / float64(n-1)
	values := make([]float64, n)
	for i := range values {
		values[i] = start + step*float64(i)
	}
	values[n-1] = stop
	return values
}

func roundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
