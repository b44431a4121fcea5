package weather

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/firewatch/firewatch-risk-api/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	mu      sync.Mutex
	calls   int
	failAt  geo.Point
	failErr error
}

func (s *stubFetcher) FetchPoint(_ context.Context, point geo.Point) (Observation, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.failErr != nil && point == s.failAt {
		return Observation{}, s.failErr
	}
	return Observation{
		Temperature:   20,
		Humidity:      50,
		WindSpeed:     point.Lon, // distinguishable per point
		WindDirection: 90,
		Latitude:      point.Lat,
		Longitude:     point.Lon,
	}, nil
}

func testBBox(t *testing.T) geo.BoundingBox {
	t.Helper()
	bbox, err := geo.NewBoundingBox(10, 45, 10.1, 45.1)
	require.NoError(t, err)
	return bbox
}

func TestGridProvider_FetchesSixteenPointsInScanOrder(t *testing.T) {
	fetcher := &stubFetcher{}
	provider := NewGridProvider(fetcher)

	summary, err := provider.CurrentSummary(context.Background(), testBBox(t))
	require.NoError(t, err)

	assert.Equal(t, 16, fetcher.calls)
	require.Len(t, summary.Grid, 16)

	// First point is the top-left corner, last the bottom-right.
	assert.InDelta(t, 45.1, summary.Grid[0].Latitude, 1e-9)
	assert.InDelta(t, 10.0, summary.Grid[0].Longitude, 1e-9)
	assert.InDelta(t, 45.0, summary.Grid[15].Latitude, 1e-9)
	assert.InDelta(t, 10.1, summary.Grid[15].Longitude, 1e-9)
}

func TestGridProvider_PartialFailureFailsWholeGrid(t *testing.T) {
	bbox := testBBox(t)
	failPoint := bbox.SampleGrid(4)[7]
	fetcher := &stubFetcher{failAt: failPoint, failErr: errors.New("upstream 500")}
	provider := NewGridProvider(fetcher)

	_, err := provider.CurrentSummary(context.Background(), bbox)
	assert.ErrorIs(t, err, ErrNoWeatherData)
}

func TestGridProvider_AggregatesScalars(t *testing.T) {
	fetcher := &stubFetcher{}
	provider := NewGridProvider(fetcher)

	summary, err := provider.CurrentSummary(context.Background(), testBBox(t))
	require.NoError(t, err)

	assert.InDelta(t, 20.0, summary.Temperature, 1e-9)
	assert.InDelta(t, 50.0, summary.Humidity, 1e-9)
	assert.InDelta(t, 90.0, summary.WindDirection, 1e-9)
}
