package sentinel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/firewatch/firewatch-risk-api/internal/cache"
	"github.com/firewatch/firewatch-risk-api/internal/geo"
	"github.com/firewatch/firewatch-risk-api/internal/properties"
	"github.com/firewatch/firewatch-risk-api/internal/raster"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrNoSatelliteData is returned when no cloud-free scene covers the
// requested bounding box and time range.
var ErrNoSatelliteData = errors.New("no satellite data found")

const (
	processURL = "https://sh.dataspace.copernicus.eu/api/v1/process"

	// Ground resolution in meters per pixel used to size requests.
	targetResolution = 20

	// Sentinel Hub rejects outputs above 2500 pixels per side.
	maxOutputPixels = 2500

	maxCloudCoverPct = 25

	requestRetries = 3
)

// evalscript selects the true-color bands plus NIR, filters cloudy orbits
// upstream via the data filter, and reduces the remaining orbits to a
// per-pixel median. Output values are on the 0-10000 digital-number scale.
const evalscript = `
    //VERSION=3
    function setup() {
      return {
        input: [{ bands: ["B02", "B03", "B04", "B08", "dataMask"] }],
        output: {
          id: "default",
          bands: 5,
          sampleType: SampleType.FLOAT32,
        },
        mosaicking: "ORBIT",
      }
    }

    function median(values) {
      values.sort(function (a, b) { return a - b })
      var mid = Math.floor(values.length / 2)
      if (values.length % 2 === 0) {
        return (values[mid - 1] + values[mid]) / 2
      }
      return values[mid]
    }

    function evaluatePixel(samples) {
      var bands = ["B02", "B03", "B04", "B08"]
      var collected = { B02: [], B03: [], B04: [], B08: [] }
      for (var i = 0; i < samples.length; i++) {
        if (samples[i].dataMask === 1) {
          for (var j = 0; j < bands.length; j++) {
            collected[bands[j]].push(samples[i][bands[j]])
          }
        }
      }
      if (collected.B04.length === 0) {
        return [0, 0, 0, 0, 0]
      }
      return [
        median(collected.B02) * 10000,
        median(collected.B03) * 10000,
        median(collected.B04) * 10000,
        median(collected.B08) * 10000,
        1,
      ]
    }
  `

// Client fetches temporally reduced Sentinel-2 rasters from the Copernicus
// Sentinel Hub process API. Responses are cached on disk keyed by the
// rounded bounding box and date range.
type Client struct {
	httpClient *http.Client
	processURL string
	cache      cache.CacheService[[]byte]
}

// NewClient builds a client authenticated with the Copernicus OAuth2 client
// credentials from the environment.
func NewClient(ctx context.Context) (*Client, error) {
	clientID := properties.CopernicusClientID()
	clientSecret := properties.CopernicusClientSecret()
	tokenURL := properties.CopernicusTokenURL()
	if clientID == "" || clientSecret == "" || tokenURL == "" {
		return nil, fmt.Errorf("missing required environment variables: COPERNICUS_CLIENT_ID, COPERNICUS_CLIENT_SECRET, or COPERNICUS_TOKEN_URL")
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}

	registerDrivers()

	return &Client{
		httpClient: config.Client(ctx),
		processURL: processURL,
		cache:      cache.NewFileCache[[]byte]("satellite"),
	}, nil
}

// FetchCube retrieves the median-reduced raster cube for a bounding box and
// date range, or ErrNoSatelliteData when the scene is entirely masked.
func (c *Client) FetchCube(ctx context.Context, bbox geo.BoundingBox, startDate, endDate time.Time) (*raster.Cube, error) {
	// Round before fetching so the cached bytes always match the key,
	// whichever sub-rounding variant of the box a caller passes in.
	rounded := bbox.Rounded()
	cacheKey := c.cache.GenerateKey(
		rounded.MinLon(), rounded.MinLat(), rounded.MaxLon(), rounded.MaxLat(),
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"),
	)

	if tiff, ok := c.cache.Get(cacheKey); ok {
		return ParseCube(tiff)
	}

	tiff, err := c.requestImage(ctx, rounded, startDate, endDate)
	if err != nil {
		return nil, err
	}

	cube, err := ParseCube(tiff)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(cacheKey, tiff); err != nil {
		fmt.Printf("Failed to cache satellite response: %v\n", err)
	}
	return cube, nil
}

func (c *Client) requestImage(ctx context.Context, bbox geo.BoundingBox, startDate, endDate time.Time) ([]byte, error) {
	widthPixels := calculatePixels(bbox.MaxLon()-bbox.MinLon(), targetResolution)
	heightPixels := calculatePixels(bbox.MaxLat()-bbox.MinLat(), targetResolution)
	if widthPixels > maxOutputPixels {
		widthPixels = maxOutputPixels
	}
	if heightPixels > maxOutputPixels {
		heightPixels = maxOutputPixels
	}

	requestPayload := map[string]interface{}{
		"input": map[string]interface{}{
			"bounds": map[string]interface{}{
				"bbox": bbox.Slice(),
				"properties": map[string]string{
					"crs": "http://www.opengis.net/def/crs/EPSG/0/4326",
				},
			},
			"data": []map[string]interface{}{
				{
					"dataFilter": map[string]interface{}{
						"timeRange": map[string]string{
							"from": startDate.Format(time.RFC3339),
							"to":   endDate.Format(time.RFC3339),
						},
						"maxCloudCoverage": maxCloudCoverPct,
					},
					"type": "sentinel-2-l2a",
				},
			},
		},
		"output": map[string]interface{}{
			"width":  widthPixels,
			"height": heightPixels,
			"responses": []map[string]interface{}{
				{
					"identifier": "default",
					"format": map[string]string{
						"type": "image/tiff",
					},
				},
			},
		},
		"evalscript": evalscript,
	}

	requestBody, err := json.Marshal(requestPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %v", err)
	}

	var lastErr error
	for attempt := 1; attempt <= requestRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.processURL, bytes.NewReader(requestBody))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")

		response, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			fmt.Printf("Attempt %d failed: %v\n", attempt, err)
			continue
		}

		body, err := io.ReadAll(response.Body)
		response.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %v", err)
			continue
		}

		if response.StatusCode == http.StatusForbidden || response.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("unauthorized access, check your client ID and secret")
		}
		if response.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("process API returned status %d: %s", response.StatusCode, body)
			fmt.Printf("Attempt %d failed: %s\n", attempt, body)
			continue
		}

		return body, nil
	}

	return nil, fmt.Errorf("failed to request image after %d attempts: %v", requestRetries, lastErr)
}

func calculatePixels(distance float64, resolution float64) int {
	pixels := distance * (111_000.0 / resolution)
	if pixels < 1 {
		return 1
	}
	return int(pixels)
}
