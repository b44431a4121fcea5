package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/firewatch/firewatch-risk-api/internal/geo"
	"github.com/sony/gobreaker"
)

const forecastBaseURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteoClient fetches current conditions for single grid points from the
// Open-Meteo forecast API. All requests go through a shared circuit breaker
// so a flapping upstream trips fast instead of stalling 16 point fetches.
type OpenMeteoClient struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
}

func NewOpenMeteoClient() *OpenMeteoClient {
	return &OpenMeteoClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    forecastBaseURL,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "open-meteo-forecast",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
}

type openMeteoCurrent struct {
	Temperature   float64 `json:"temperature_2m"`
	Humidity      float64 `json:"relative_humidity_2m"`
	WindSpeed     float64 `json:"wind_speed_10m"`
	WindDirection float64 `json:"wind_direction_10m"`
}

type openMeteoResponse struct {
	Latitude  float64          `json:"latitude"`
	Longitude float64          `json:"longitude"`
	Current   openMeteoCurrent `json:"current"`
}

// FetchPoint retrieves the current conditions at one grid point.
func (c *OpenMeteoClient) FetchPoint(ctx context.Context, point geo.Point) (Observation, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", point.Lat))
	params.Set("longitude", fmt.Sprintf("%f", point.Lon))
	params.Set("current", "temperature_2m,relative_humidity_2m,wind_speed_10m,wind_direction_10m")

	body, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return Observation{}, err
	}

	var payload openMeteoResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Observation{}, fmt.Errorf("failed to parse open-meteo response: %w", err)
	}

	return Observation{
		Temperature:   payload.Current.Temperature,
		Humidity:      payload.Current.Humidity,
		WindSpeed:     payload.Current.WindSpeed,
		WindDirection: payload.Current.WindDirection,
		Latitude:      point.Lat,
		Longitude:     point.Lon,
	}, nil
}

func (c *OpenMeteoClient) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("open-meteo returned status %d: %s", resp.StatusCode, body)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
