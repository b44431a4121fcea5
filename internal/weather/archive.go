package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/firewatch/firewatch-risk-api/internal/geo"
)

const archiveBaseURL = "https://archive-api.open-meteo.com/v1/archive"

// ArchiveClient fetches historical daily conditions for a fixed date from the
// Open-Meteo archive API. It is used by the batch dataset builder to replay
// the analysis pipeline over past fire detections.
type ArchiveClient struct {
	httpClient *http.Client
	baseURL    string
	date       time.Time
	retries    int
}

func NewArchiveClient(date time.Time) *ArchiveClient {
	return &ArchiveClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    archiveBaseURL,
		date:       date,
		retries:    3,
	}
}

type archiveResponse struct {
	Daily struct {
		TemperatureMax        []float64 `json:"temperature_2m_max"`
		WindSpeedMax          []float64 `json:"wind_speed_10m_max"`
		WindDirectionDominant []float64 `json:"wind_direction_10m_dominant"`
	} `json:"daily"`
	Hourly struct {
		RelativeHumidity []float64 `json:"relative_humidity_2m"`
	} `json:"hourly"`
}

// FetchPoint retrieves the archived conditions at one grid point for the
// client's date. Humidity is taken at noon; temperature and wind use the
// daily maxima.
func (c *ArchiveClient) FetchPoint(ctx context.Context, point geo.Point) (Observation, error) {
	day := c.date.Format("2006-01-02")
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", point.Lat))
	params.Set("longitude", fmt.Sprintf("%f", point.Lon))
	params.Set("start_date", day)
	params.Set("end_date", day)
	params.Set("daily", "temperature_2m_max,wind_speed_10m_max,wind_direction_10m_dominant")
	params.Set("hourly", "relative_humidity_2m")
	params.Set("timezone", "auto")

	fullURL := c.baseURL + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Observation{}, ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}

		payload, err := c.fetch(ctx, fullURL)
		if err != nil {
			lastErr = err
			continue
		}

		if len(payload.Daily.TemperatureMax) == 0 || len(payload.Hourly.RelativeHumidity) < 13 {
			return Observation{}, fmt.Errorf("archive response missing data for %s", day)
		}

		obs := Observation{
			Temperature: payload.Daily.TemperatureMax[0],
			Humidity:    payload.Hourly.RelativeHumidity[12],
			WindSpeed:   payload.Daily.WindSpeedMax[0],
			Latitude:    point.Lat,
			Longitude:   point.Lon,
		}
		if len(payload.Daily.WindDirectionDominant) > 0 {
			obs.WindDirection = payload.Daily.WindDirectionDominant[0]
		}
		return obs, nil
	}

	return Observation{}, fmt.Errorf("failed to retrieve archive weather after %d attempts: %w", c.retries, lastErr)
}

func (c *ArchiveClient) fetch(ctx context.Context, fullURL string) (*archiveResponse, error) {
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
		return nil, fmt.Errorf("archive API returned status %d", resp.StatusCode)
	}

	var payload archiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse archive response: %w", err)
	}
	return &payload, nil
}
