package weather

import "errors"

// ErrNoWeatherData is returned when the weather grid could not be fetched,
// in full or in part. The pipeline never works with a partial grid.
var ErrNoWeatherData = errors.New("no weather data")

// Observation is one fetched grid point with its current conditions.
type Observation struct {
	Temperature   float64
	Humidity      float64
	WindSpeed     float64
	WindDirection float64
	Latitude      float64
	Longitude     float64
}

// Sample is the per-point subset of an observation that is retained on the
// summary for downstream wind visualization. The short JSON keys match the
// vector-field convention the map frontend consumes.
type Sample struct {
	WindSpeed     float64 `json:"u"`
	WindDirection float64 `json:"v"`
	Latitude      float64 `json:"lat"`
	Longitude     float64 `json:"lon"`
}

// Summary aggregates a fetched weather grid into scalar statistics plus the
// ordered grid it was derived from (grid scan order: latitude top to bottom,
// longitude left to right).
type Summary struct {
	Temperature   float64  `json:"temp"`
	Humidity      float64  `json:"humidity"`
	WindSpeed     float64  `json:"wind"`
	WindDirection float64  `json:"wind_dir"`
	Grid          []Sample `json:"grid"`
}
