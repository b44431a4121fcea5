package analysis

import (
	"context"
	"time"

	"github.com/firewatch/firewatch-risk-api/internal/geo"
	"github.com/firewatch/firewatch-risk-api/internal/raster"
	"github.com/firewatch/firewatch-risk-api/internal/render"
	"github.com/firewatch/firewatch-risk-api/internal/risk"
	"github.com/firewatch/firewatch-risk-api/internal/weather"
	"github.com/firewatch/firewatch-risk-api/output"
	"golang.org/x/sync/errgroup"
)

// MinZoom is the zoom level below which requests are ignored without any
// fetch: a zoomed-out view covers too much ground for the imagery resolution
// to mean anything.
const MinZoom = 10.0

const (
	StatusSuccess = "success"
	StatusIgnored = "ignored"
	StatusError   = "error"
)

// RasterProvider supplies a temporally reduced raster cube for a bounding
// box and date range.
type RasterProvider interface {
	FetchCube(ctx context.Context, bbox geo.BoundingBox, startDate, endDate time.Time) (*raster.Cube, error)
}

// WeatherProvider supplies an aggregated weather summary for a bounding box.
type WeatherProvider interface {
	CurrentSummary(ctx context.Context, bbox geo.BoundingBox) (weather.Summary, error)
}

// Request describes one analysis over a bounding box and time range.
type Request struct {
	BBox        geo.BoundingBox
	Zoom        float64
	StartDate   time.Time
	EndDate     time.Time
	IncludeWind bool
}

// Result is the single output object of an analysis. On any status other
// than success only Status and Message are populated: the pipeline never
// returns partial images or scores alongside a failure.
type Result struct {
	Status    string
	Message   string
	RiskScore int
	MeanNDVI  float64
	Weather   weather.Summary
	ImageNDVI []byte
	ImageRGB  []byte
	ImageWind []byte
	Bounds    [2][2]float64
}

// Service sequences the analysis pipeline. The same service drives the live
// HTTP path and the batch dataset builder.
type Service struct {
	raster  RasterProvider
	weather WeatherProvider
}

func NewService(rasterProvider RasterProvider, weatherProvider WeatherProvider) *Service {
	return &Service{raster: rasterProvider, weather: weatherProvider}
}

// Analyze runs the full pipeline: fetch raster and weather, compute NDVI and
// risk score, render the overlay and true-color images. The returned error is
// non-nil exactly when the result status is "error".
func (s *Service) Analyze(ctx context.Context, req Request) (Result, error) {
	if req.Zoom < MinZoom {
		return Result{Status: StatusIgnored, Message: "Zoom too low"}, nil
	}

	var (
		cube       *raster.Cube
		summary    weather.Summary
		rasterErr  error
		weatherErr error
	)

	// The two fetches are independent; run them concurrently and inspect
	// their errors afterwards so satellite failures keep reporting priority.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cube, rasterErr = s.raster.FetchCube(gctx, req.BBox, req.StartDate, req.EndDate)
		return nil
	})
	g.Go(func() error {
		summary, weatherErr = s.weather.CurrentSummary(gctx, req.BBox)
		return nil
	})
	g.Wait()

	if rasterErr != nil {
		return errorResult("No satellite data found.", rasterErr)
	}
	if weatherErr != nil {
		return errorResult("No weather data found.", weatherErr)
	}

	ndvi, err := cube.NDVI()
	if err != nil {
		return errorResult("Satellite scene is missing required bands.", err)
	}

	meanNDVI, err := raster.NanMean(ndvi)
	if err != nil {
		return errorResult("No vegetation data in scene.", err)
	}

	score, err := risk.Score(summary, meanNDVI)
	if err != nil {
		return errorResult("No vegetation data in scene.", err)
	}

	imageNDVI, err := render.NDVIOverlay(ndvi)
	if err != nil {
		return errorResult("Failed to render vegetation overlay.", err)
	}

	imageRGB, err := render.TrueColor(cube)
	if err != nil {
		return errorResult("Failed to render true-color image.", err)
	}

	var imageWind []byte
	if req.IncludeWind {
		height, width := cube.Size()
		imageWind, err = output.CreateWindFieldImage(summary, width, height)
		if err != nil {
			return errorResult("Failed to render wind field.", err)
		}
	}

	return Result{
		Status:    StatusSuccess,
		RiskScore: score,
		MeanNDVI:  meanNDVI,
		Weather:   summary,
		ImageNDVI: imageNDVI,
		ImageRGB:  imageRGB,
		ImageWind: imageWind,
		Bounds:    req.BBox.LeafletBounds(),
	}, nil
}

func errorResult(message string, err error) (Result, error) {
	return Result{Status: StatusError, Message: message}, err
}
