package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/firewatch/firewatch-risk-api/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const archiveResponseBody = `{
	"daily": {
		"temperature_2m_max": [31.5],
		"wind_speed_10m_max": [18.2],
		"wind_direction_10m_dominant": [225.0]
	},
	"hourly": {
		"relative_humidity_2m": [80,78,76,74,72,70,65,60,55,50,45,40,35,34,33,32,31,30,35,40,45,50,55,60]
	}
}`

func newTestArchiveClient(serverURL string) *ArchiveClient {
	client := NewArchiveClient(time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC))
	client.baseURL = serverURL
	client.retries = 1
	return client
}

func TestArchiveClient_FetchPoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2023-08-01", r.URL.Query().Get("start_date"))
		assert.Equal(t, "2023-08-01", r.URL.Query().Get("end_date"))
		w.Write([]byte(archiveResponseBody))
	}))
	defer server.Close()

	obs, err := newTestArchiveClient(server.URL).FetchPoint(context.Background(), geo.Point{Lat: 39.5, Lon: -8.2})
	require.NoError(t, err)

	assert.InDelta(t, 31.5, obs.Temperature, 1e-9)
	assert.InDelta(t, 35.0, obs.Humidity, 1e-9, "humidity is the noon hourly value")
	assert.InDelta(t, 18.2, obs.WindSpeed, 1e-9)
	assert.InDelta(t, 225.0, obs.WindDirection, 1e-9, "wind direction is the daily dominant value")
	assert.InDelta(t, 39.5, obs.Latitude, 1e-9)
	assert.InDelta(t, -8.2, obs.Longitude, 1e-9)
}

func TestArchiveClient_MissingData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"daily": {}, "hourly": {}}`))
	}))
	defer server.Close()

	_, err := newTestArchiveClient(server.URL).FetchPoint(context.Background(), geo.Point{Lat: 39.5, Lon: -8.2})
	assert.ErrorContains(t, err, "missing data")
}
