package weather

import "math"

// zeroVectorEpsilon bounds the wind vector magnitude below which the circular
// mean is considered degenerate (e.g. directions 0/90/180/270 cancelling out).
const zeroVectorEpsilon = 1e-9

// Aggregate reduces an ordered set of observations into a Summary.
// Temperature, humidity and wind speed are arithmetic means. Wind direction
// is the circular mean: each direction becomes a unit vector, the vectors are
// summed, and the result is the atan2 of the sums converted back to degrees
// in [0, 360). A zero resultant vector yields 0.
func Aggregate(observations []Observation) (Summary, error) {
	if len(observations) == 0 {
		return Summary{}, ErrNoWeatherData
	}

	var sumTemp, sumHumidity, sumWind float64
	var sinSum, cosSum float64
	grid := make([]Sample, 0, len(observations))

	for _, obs := range observations {
		sumTemp += obs.Temperature
		sumHumidity += obs.Humidity
		sumWind += obs.WindSpeed

		rad := obs.WindDirection * math.Pi / 180
		sinSum += math.Sin(rad)
		cosSum += math.Cos(rad)

		grid = append(grid, Sample{
			WindSpeed:     obs.WindSpeed,
			WindDirection: obs.WindDirection,
			Latitude:      obs.Latitude,
			Longitude:     obs.Longitude,
		})
	}

	count := float64(len(observations))
	return Summary{
		Temperature:   sumTemp / count,
		Humidity:      sumHumidity / count,
		WindSpeed:     sumWind / count,
		WindDirection: circularMeanDegrees(sinSum, cosSum),
		Grid:          grid,
	}, nil
}

func circularMeanDegrees(sinSum, cosSum float64) float64 {
	if math.Hypot(sinSum, cosSum) < zeroVectorEpsilon {
		return 0
	}
	deg := math.Atan2(sinSum, cosSum) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}
