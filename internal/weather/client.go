// Package weather looks up current conditions from Open-Meteo. Lookups are
// best-effort: every failure is logged and reported as a nil result.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
)

// DefaultBaseURL is the public Open-Meteo API root.
const DefaultBaseURL = "https://api.open-meteo.com"

const maxResponseSize = 64 * 1024

// Client fetches current weather for a coordinate pair.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New constructs a Client. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, hc *http.Client, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc, logger: logger}
}

type forecast struct {
	Current *struct {
		Temperature *float64 `json:"temperature_2m"`
		WeatherCode *int     `json:"weather_code"`
		WindSpeed   *float64 `json:"wind_speed_10m"`
	} `json:"current"`
}

// FetchWeather returns current conditions at c, or nil when the lookup
// fails for any reason.
func (cl *Client) FetchWeather(ctx context.Context, c domain.Coordinates) *domain.Weather {
	w, err := cl.fetch(ctx, c)
	if err != nil {
		cl.logger.Warn("weather enrichment skipped",
			"lat", c.Lat,
			"lng", c.Lng,
			"error", fmt.Errorf("%w: %w", domain.ErrEnrichmentFailed, err))
		return nil
	}
	return w
}

func (cl *Client) fetch(ctx context.Context, c domain.Coordinates) (*domain.Weather, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.Lng, 'f', -1, 64))
	q.Set("current", "temperature_2m,weather_code,wind_speed_10m")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cl.baseURL+"/v1/forecast?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := cl.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var f forecast
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if f.Current == nil || f.Current.Temperature == nil || f.Current.WeatherCode == nil || f.Current.WindSpeed == nil {
		return nil, fmt.Errorf("incomplete current conditions")
	}

	return &domain.Weather{
		Temperature: *f.Current.Temperature,
		WeatherCode: *f.Current.WeatherCode,
		WindSpeed:   *f.Current.WindSpeed,
	}, nil
}
