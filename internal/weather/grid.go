package weather

import (
	"context"
	"fmt"

	"github.com/firewatch/firewatch-risk-api/internal/cache"
	"github.com/firewatch/firewatch-risk-api/internal/geo"
	"github.com/gammazero/workerpool"
)

// gridSize is fixed regardless of the bounding box extent: a 4x4 grid keeps
// the external API cost bounded per request.
const gridSize = 4

// gridWorkers bounds how many point fetches run at once.
const gridWorkers = 4

// PointFetcher fetches the conditions at a single grid point.
type PointFetcher interface {
	FetchPoint(ctx context.Context, point geo.Point) (Observation, error)
}

// GridProvider samples a fixed 4x4 grid of points across a bounding box,
// fetches each point through the configured fetcher and aggregates the
// result. A failure at any point fails the whole grid: the pipeline never
// scores against an imputed partial grid.
type GridProvider struct {
	fetcher PointFetcher
	cache   cache.CacheService[Summary]
}

func NewGridProvider(fetcher PointFetcher) *GridProvider {
	return &GridProvider{fetcher: fetcher}
}

// NewCachedGridProvider adds a file cache keyed by the rounded bbox corners.
func NewCachedGridProvider(fetcher PointFetcher) *GridProvider {
	return &GridProvider{
		fetcher: fetcher,
		cache:   cache.NewFileCache[Summary]("weather"),
	}
}

// CurrentSummary fetches and aggregates the weather grid for a bounding box.
func (p *GridProvider) CurrentSummary(ctx context.Context, bbox geo.BoundingBox) (Summary, error) {
	var cacheKey string
	if p.cache != nil {
		rounded := bbox.Rounded()
		cacheKey = p.cache.GenerateKey(rounded.MinLon(), rounded.MinLat(), rounded.MaxLon(), rounded.MaxLat())
		if cached, ok := p.cache.Get(cacheKey); ok {
			return cached, nil
		}
	}

	points := bbox.SampleGrid(gridSize)
	observations := make([]Observation, len(points))
	errs := make([]error, len(points))

	wp := workerpool.New(gridWorkers)
	for i, point := range points {
		i, point := i, point
		wp.Submit(func() {
			observations[i], errs[i] = p.fetcher.FetchPoint(ctx, point)
		})
	}
	wp.StopWait()

	for _, err := range errs {
		if err != nil {
			return Summary{}, fmt.Errorf("%w: %v", ErrNoWeatherData, err)
		}
	}

	summary, err := Aggregate(observations)
	if err != nil {
		return Summary{}, err
	}

	if p.cache != nil {
		if err := p.cache.Set(cacheKey, summary); err != nil {
			fmt.Printf("Failed to cache weather summary: %v\n", err)
		}
	}
	return summary, nil
}
