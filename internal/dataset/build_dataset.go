package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/firewatch/firewatch-risk-api/internal/analysis"
	"github.com/firewatch/firewatch-risk-api/internal/geo"
	"github.com/firewatch/firewatch-risk-api/internal/weather"
	"github.com/gocarina/gocsv"
	"github.com/schollz/progressbar/v3"
)

const (
	// Half-width in degrees of the bbox built around each sampled point.
	pointBoxSize = 0.02

	// How far back to search for a cloud-free scene before the sample date.
	sceneLookbackDays = 20

	// Pause between points to stay inside the free API tiers.
	pointThrottle = 500 * time.Millisecond
)

// TrainingRow is one enriched sample of the final training dataset.
type TrainingRow struct {
	Latitude     float64 `csv:"latitude"`
	Longitude    float64 `csv:"longitude"`
	Date         string  `csv:"date"`
	Temperature  float64 `csv:"temperature"`
	Humidity     float64 `csv:"humidity"`
	WindSpeed    float64 `csv:"wind_speed"`
	NDVI         float64 `csv:"ndvi"`
	RiskScore    int     `csv:"risk_score"`
	FireOccurred int     `csv:"fire_occurred"`
}

// Builder replays the analysis pipeline over historical sample points,
// enriching each with archived weather and the scene mean NDVI. The raster
// provider is the same one the live service uses; weather comes from the
// archive API pinned to each sample's date.
type Builder struct {
	raster         analysis.RasterProvider
	weatherForDate func(date time.Time) analysis.WeatherProvider
	throttle       time.Duration
}

func NewBuilder(raster analysis.RasterProvider) *Builder {
	return &Builder{
		raster: raster,
		weatherForDate: func(date time.Time) analysis.WeatherProvider {
			return weather.NewGridProvider(weather.NewArchiveClient(date))
		},
		throttle: pointThrottle,
	}
}

// Build enriches every point of the input CSV and appends the resulting rows
// to the output CSV. The run is resumable: rows already present in the
// output are skipped.
func (b *Builder) Build(ctx context.Context, inputFile, outputFile string) error {
	points, err := readLabeledPoints(inputFile)
	if err != nil {
		return err
	}

	startIdx, err := countExistingRows(outputFile)
	if err != nil {
		return err
	}
	if startIdx > 0 {
		fmt.Printf("Resuming from index %d...\n", startIdx)
	}
	if startIdx >= len(points) {
		fmt.Println("All samples already processed.")
		return nil
	}

	progressBar := progressbar.Default(int64(len(points)-startIdx), "Building dataset")
	failures := 0

	for _, point := range points[startIdx:] {
		if err := ctx.Err(); err != nil {
			return err
		}

		row, err := b.enrichPoint(ctx, point)
		if err != nil {
			failures++
			fmt.Printf("Skipped point (%f, %f) on %s: %v\n", point.Latitude, point.Longitude, point.AcqDate, err)
		} else if err := appendRow(outputFile, row); err != nil {
			return err
		}

		progressBar.Add(1)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.throttle):
		}
	}

	if failures == len(points)-startIdx {
		return fmt.Errorf("all %d points failed during dataset construction", failures)
	}
	return nil
}

func (b *Builder) enrichPoint(ctx context.Context, point LabeledPoint) (TrainingRow, error) {
	date, err := time.Parse("2006-01-02", point.AcqDate)
	if err != nil {
		return TrainingRow{}, fmt.Errorf("invalid sample date: %v", err)
	}

	bbox, err := geo.NewBoundingBox(
		point.Longitude-pointBoxSize, point.Latitude-pointBoxSize,
		point.Longitude+pointBoxSize, point.Latitude+pointBoxSize,
	)
	if err != nil {
		return TrainingRow{}, err
	}

	// Same pipeline as the live request path, with the weather grid pinned
	// to the sample's date.
	svc := analysis.NewService(b.raster, b.weatherForDate(date))
	result, err := svc.Analyze(ctx, analysis.Request{
		BBox:      bbox,
		Zoom:      analysis.MinZoom,
		StartDate: date.AddDate(0, 0, -sceneLookbackDays),
		EndDate:   date,
	})
	if err != nil {
		return TrainingRow{}, err
	}

	return TrainingRow{
		Latitude:     point.Latitude,
		Longitude:    point.Longitude,
		Date:         point.AcqDate,
		Temperature:  result.Weather.Temperature,
		Humidity:     result.Weather.Humidity,
		WindSpeed:    result.Weather.WindSpeed,
		NDVI:         result.MeanNDVI,
		RiskScore:    result.RiskScore,
		FireOccurred: point.FireOccurred,
	}, nil
}

func readLabeledPoints(inputFile string) ([]LabeledPoint, error) {
	file, err := os.Open(inputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %v", err)
	}
	defer file.Close()

	var points []LabeledPoint
	if err := gocsv.UnmarshalFile(file, &points); err != nil {
		return nil, fmt.Errorf("failed to parse input file: %v", err)
	}
	return points, nil
}

func countExistingRows(outputFile string) (int, error) {
	file, err := os.Open(outputFile)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to open output file: %v", err)
	}
	defer file.Close()

	var rows []TrainingRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return 0, fmt.Errorf("failed to parse existing output file: %v", err)
	}
	return len(rows), nil
}

func appendRow(outputFile string, row TrainingRow) error {
	fileExists := false
	if _, err := os.Stat(outputFile); err == nil {
		fileExists = true
	}

	file, err := os.OpenFile(outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %v", err)
	}
	defer file.Close()

	if fileExists {
		if _, err := file.Seek(0, io.SeekEnd); err != nil {
			return fmt.Errorf("failed to seek to end of output file: %v", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	rows := []TrainingRow{row}
	if fileExists {
		return gocsv.MarshalCSVWithoutHeaders(&rows, writer)
	}
	return gocsv.MarshalCSV(&rows, writer)
}
