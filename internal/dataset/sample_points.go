package dataset

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
)

const (
	// Cap per country file so one large country does not dominate the sample.
	maxFiresPerCountry = 50

	// Numeric FIRMS confidence threshold equivalent to the "high" class.
	numericConfidenceHigh = 80

	// Negative examples are the same locations shifted back half a year:
	// a spot burning in summer is normally safe in winter.
	safeShiftDays = 180
)

// FirePoint is one row of a NASA FIRMS active-fire CSV.
type FirePoint struct {
	Latitude   float64 `csv:"latitude"`
	Longitude  float64 `csv:"longitude"`
	AcqDate    string  `csv:"acq_date"`
	Confidence string  `csv:"confidence"`
}

// LabeledPoint is a sampled location/date pair with its fire label.
type LabeledPoint struct {
	Latitude     float64 `csv:"latitude"`
	Longitude    float64 `csv:"longitude"`
	AcqDate      string  `csv:"acq_date"`
	FireOccurred int     `csv:"fire_occurred"`
}

// SampleFirePoints scans the FIRMS country CSVs in inputDir for
// high-confidence detections, samples up to targetFireCount of them and
// pairs each with a date-shifted negative twin. The returned slice is
// shuffled.
func SampleFirePoints(inputDir string, targetFireCount int) ([]LabeledPoint, error) {
	files, err := filepath.Glob(filepath.Join(inputDir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to list input folder: %v", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CSV files found in %s", inputDir)
	}

	// Shuffle the file list so the sample is not biased toward countries
	// early in the alphabet.
	rand.Shuffle(len(files), func(i, j int) { files[i], files[j] = files[j], files[i] })

	var fires []FirePoint
	for _, file := range files {
		points, err := readFirePoints(file)
		if err != nil {
			fmt.Printf("Skipped %s: %v\n", filepath.Base(file), err)
			continue
		}

		highConfidence := make([]FirePoint, 0, len(points))
		for _, p := range points {
			if isHighConfidence(p.Confidence) {
				highConfidence = append(highConfidence, p)
			}
		}

		rand.Shuffle(len(highConfidence), func(i, j int) {
			highConfidence[i], highConfidence[j] = highConfidence[j], highConfidence[i]
		})
		if len(highConfidence) > maxFiresPerCountry {
			highConfidence = highConfidence[:maxFiresPerCountry]
		}
		fires = append(fires, highConfidence...)

		// Stop scanning once we have a comfortable buffer over the target.
		if len(fires) > targetFireCount*3/2 {
			break
		}
	}

	if len(fires) == 0 {
		return nil, fmt.Errorf("no high-confidence fires found in %s", inputDir)
	}

	rand.Shuffle(len(fires), func(i, j int) { fires[i], fires[j] = fires[j], fires[i] })
	if len(fires) > targetFireCount {
		fires = fires[:targetFireCount]
	}

	labeled := make([]LabeledPoint, 0, len(fires)*2)
	for _, fire := range fires {
		labeled = append(labeled, LabeledPoint{
			Latitude:     fire.Latitude,
			Longitude:    fire.Longitude,
			AcqDate:      fire.AcqDate,
			FireOccurred: 1,
		})

		shifted, err := shiftDate(fire.AcqDate, -safeShiftDays)
		if err != nil {
			continue
		}
		labeled = append(labeled, LabeledPoint{
			Latitude:     fire.Latitude,
			Longitude:    fire.Longitude,
			AcqDate:      shifted,
			FireOccurred: 0,
		})
	}

	rand.Shuffle(len(labeled), func(i, j int) { labeled[i], labeled[j] = labeled[j], labeled[i] })
	return labeled, nil
}

// WriteSampledPoints persists the sampled points as the input CSV of the
// dataset builder.
func WriteSampledPoints(points []LabeledPoint, outputFile string) error {
	file, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %v", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&points, file); err != nil {
		return fmt.Errorf("failed to write sampled points: %v", err)
	}
	return nil
}

func readFirePoints(file string) ([]FirePoint, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var points []FirePoint
	if err := gocsv.UnmarshalFile(f, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// isHighConfidence accepts both FIRMS confidence encodings: the VIIRS
// l/n/h classes and the MODIS 0-100 numeric scale.
func isHighConfidence(confidence string) bool {
	if confidence == "h" || confidence == "high" {
		return true
	}
	if value, err := strconv.ParseFloat(confidence, 64); err == nil {
		return value >= numericConfidenceHigh
	}
	return false
}

func shiftDate(dateStr string, days int) (string, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return "", fmt.Errorf("invalid acquisition date %q: %v", dateStr, err)
	}
	return date.AddDate(0, 0, days).Format("2006-01-02"), nil
}
