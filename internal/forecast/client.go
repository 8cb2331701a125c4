// Package forecast fetches point weather forecasts for the weather
// pricing model: free-text place names are geocoded once, daily highs
// come from the forecast API, and both are cached so repeated questions
// about the same city in a cycle cost one lookup.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/cache"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Lookup failures. These mean "skip this market this cycle", not retry.
var (
	ErrLocationNotFound = errors.New("location not found")
	ErrNoForecast       = errors.New("no forecast for date")
)

const (
	geocodeTTL  = 24 * time.Hour
	forecastTTL = 30 * time.Minute
	maxLeadDays = 14 // provider horizon
)

// Client resolves place names and daily high temperatures.
type Client struct {
	geocodeURL  string
	forecastURL string
	httpClient  *http.Client
	cache       cache.Cache
	logger      *zap.Logger
}

// Config holds forecast client configuration.
type Config struct {
	GeocodeURL  string
	ForecastURL string
	Cache       cache.Cache
	Logger      *zap.Logger
}

// NewClient creates a forecast client.
func NewClient(cfg *Config) *Client {
	return &Client{
		geocodeURL:  cfg.GeocodeURL,
		forecastURL: cfg.ForecastURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		cache:       cfg.Cache,
		logger:      cfg.Logger,
	}
}

type coordinates struct {
	Latitude  float64
	Longitude float64
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	Daily struct {
		Time             []string  `json:"time"`
		Temperature2mMax []float64 `json:"temperature_2m_max"`
	} `json:"daily"`
}

// DailyHigh returns the forecast high temperature in Fahrenheit for the
// place on the given date.
func (c *Client) DailyHigh(ctx context.Context, place string, date time.Time) (float64, error) {
	coords, err := c.geocode(ctx, place)
	if err != nil {
		return 0, err
	}

	key := fmt.Sprintf("high:%.3f:%.3f", coords.Latitude, coords.Longitude)
	highs, err := c.dailyHighs(ctx, key, coords)
	if err != nil {
		return 0, err
	}

	day := date.Format("2006-01-02")
	high, ok := highs[day]
	if !ok {
		return 0, fmt.Errorf("%s on %s: %w", place, day, ErrNoForecast)
	}

	return high, nil
}

// geocode resolves a place name to coordinates, cached for a day.
func (c *Client) geocode(ctx context.Context, place string) (coordinates, error) {
	key := "geo:" + place
	if v, ok := c.cache.Get(key); ok {
		return v.(coordinates), nil
	}

	start := time.Now()

	params := url.Values{}
	params.Add("name", place)
	params.Add("count", "1")

	var resp geocodeResponse
	err := c.getJSON(ctx, c.geocodeURL+"?"+params.Encode(), &resp)
	LookupDurationSeconds.WithLabelValues("geocode").Observe(time.Since(start).Seconds())
	if err != nil {
		return coordinates{}, fmt.Errorf("geocode %q: %w", place, err)
	}

	if len(resp.Results) == 0 {
		LookupMissesTotal.WithLabelValues("geocode").Inc()
		return coordinates{}, fmt.Errorf("geocode %q: %w", place, ErrLocationNotFound)
	}

	coords := coordinates{
		Latitude:  resp.Results[0].Latitude,
		Longitude: resp.Results[0].Longitude,
	}
	c.cache.Set(key, coords, geocodeTTL)

	c.logger.Debug("place-geocoded",
		zap.String("place", place),
		zap.Float64("lat", coords.Latitude),
		zap.Float64("lon", coords.Longitude))

	return coords, nil
}

// dailyHighs fetches the full forecast horizon for the coordinates,
// keyed by ISO date, cached briefly.
func (c *Client) dailyHighs(ctx context.Context, key string, coords coordinates) (map[string]float64, error) {
	if v, ok := c.cache.Get(key); ok {
		return v.(map[string]float64), nil
	}

	start := time.Now()

	params := url.Values{}
	params.Add("latitude", strconv.FormatFloat(coords.Latitude, 'f', 4, 64))
	params.Add("longitude", strconv.FormatFloat(coords.Longitude, 'f', 4, 64))
	params.Add("daily", "temperature_2m_max")
	params.Add("temperature_unit", "fahrenheit")
	params.Add("forecast_days", strconv.Itoa(maxLeadDays))
	params.Add("timezone", "auto")

	var resp forecastResponse
	err := c.getJSON(ctx, c.forecastURL+"?"+params.Encode(), &resp)
	LookupDurationSeconds.WithLabelValues("forecast").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}

	highs := make(map[string]float64, len(resp.Daily.Time))
	for i, day := range resp.Daily.Time {
		if i < len(resp.Daily.Temperature2mMax) {
			highs[day] = resp.Daily.Temperature2mMax[i]
		}
	}

	c.cache.Set(key, highs, forecastTTL)

	return highs, nil
}

func (c *Client) getJSON(ctx context.Context, requestURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	err = json.Unmarshal(body, out)
	if err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}
