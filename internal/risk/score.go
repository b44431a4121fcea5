package risk

import (
	"errors"
	"math"

	"github.com/firewatch/firewatch-risk-api/internal/weather"
)

// ErrNoVegetationData is returned when the mean NDVI is undefined, i.e. the
// whole vegetation index array was no-data.
var ErrNoVegetationData = errors.New("no vegetation data to score")

// maxScore caps the additive rule contributions.
const maxScore = 100

// Score computes the wildfire risk score in [0, 100] from a weather summary
// and the scene mean NDVI. Each rule contributes independently; the two
// temperature rows and the two humidity rows stack, the NDVI rows are
// mutually exclusive.
func Score(summary weather.Summary, meanNDVI float64) (int, error) {
	if math.IsNaN(meanNDVI) {
		return 0, ErrNoVegetationData
	}

	score := 0
	if summary.Temperature > 25 {
		score += 20
	}
	if summary.Temperature > 35 {
		score += 20
	}
	if summary.Humidity < 40 {
		score += 20
	}
	if summary.Humidity < 20 {
		score += 20
	}
	if summary.WindSpeed > 15 {
		score += 10
	}
	if meanNDVI < 0.3 {
		score += 30
	} else if meanNDVI < 0.5 {
		score += 10
	}

	if score > maxScore {
		score = maxScore
	}
	return score, nil
}
