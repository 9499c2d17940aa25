// Package enrich looks up coordinates and daily weather for rides using the
// Open-Meteo HTTP APIs.
package enrich

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
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"ridelog/internal/cache"
	"ridelog/internal/core"
)

const (
	DefaultGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	DefaultArchiveURL  = "https://archive-api.open-meteo.com/v1/archive"

	maxCandidates = 5
)

type Config struct {
	GeocodeURL        string
	ForecastURL       string
	ArchiveURL        string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	CacheSize         int
	CacheTTL          time.Duration
}

// Client is safe for concurrent use.
type Client struct {
	http   *http.Client
	cfg    Config
	limit  *rate.Limiter
	places *cache.LRUCache[[]core.Place]
	group  singleflight.Group
	now    func() time.Time
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.GeocodeURL == "" {
		cfg.GeocodeURL = DefaultGeocodeURL
	}
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = DefaultForecastURL
	}
	if cfg.ArchiveURL == "" {
		cfg.ArchiveURL = DefaultArchiveURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limit = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		http:   httpClient,
		cfg:    cfg,
		limit:  limit,
		places: cache.NewLRUCache[[]core.Place](cfg.CacheSize, cfg.CacheTTL),
		now:    time.Now,
	}
}

// WithClock sets the clock used to choose between archive and forecast data.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// PlaceCache exposes the geocode cache for registration with a cleanup manager.
func (c *Client) PlaceCache() *cache.LRUCache[[]core.Place] {
	return c.places
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Admin1    string  `json:"admin1"`
		Country   string  `json:"country"`
	} `json:"results"`
}

// Geocode returns up to five candidate places for a free-text query. A blank
// query returns no candidates.
func (c *Client) Geocode(ctx context.Context, query string) ([]core.Place, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if key == "" {
		return nil, nil
	}
	if places, ok := c.places.Get(key); ok {
		return places, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		params := url.Values{}
		params.Set("name", strings.TrimSpace(query))
		params.Set("count", strconv.Itoa(maxCandidates))
		params.Set("language", "en")
		params.Set("format", "json")

		var resp geocodeResponse
		if err := c.getJSON(ctx, c.cfg.GeocodeURL, params, &resp); err != nil {
			return nil, fmt.Errorf("geocode %q: %w", query, err)
		}

		places := make([]core.Place, 0, len(resp.Results))
		for _, r := range resp.Results {
			if len(places) == maxCandidates {
				break
			}
			places = append(places, core.Place{
				Name:      displayName(r.Name, r.Admin1, r.Country),
				Latitude:  r.Latitude,
				Longitude: r.Longitude,
			})
		}
		c.places.Set(key, places)
		return places, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.DebugContext(ctx, "Geocode lookup shared", "query", key)
	}
	return v.([]core.Place), nil
}

func displayName(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

type dailyResponse struct {
	Daily struct {
		Time           []string   `json:"time"`
		WeatherCode    []*int     `json:"weathercode"`
		TemperatureMax []*float64 `json:"temperature_2m_max"`
	} `json:"daily"`
}

// Weather returns the daily weather for a ride date, or nil when the provider
// has no reading. Past dates are served from the archive endpoint.
func (c *Client) Weather(ctx context.Context, lat, lon float64, date string) (*core.WeatherSample, error) {
	day, ok := core.ParseRideDate(date)
	if !ok {
		return nil, fmt.Errorf("weather for %q: %w", date, core.ErrInvalidDate)
	}

	endpoint := c.cfg.ForecastURL
	now := c.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) {
		endpoint = c.cfg.ArchiveURL
	}

	isoDay := day.Format("2006-01-02")
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("start_date", isoDay)
	params.Set("end_date", isoDay)
	params.Set("daily", "weathercode,temperature_2m_max")
	params.Set("timezone", "UTC")

	var resp dailyResponse
	if err := c.getJSON(ctx, endpoint, params, &resp); err != nil {
		return nil, fmt.Errorf("weather for %s: %w", isoDay, err)
	}

	d := resp.Daily
	if len(d.WeatherCode) == 0 || len(d.TemperatureMax) == 0 {
		return nil, nil
	}
	if d.WeatherCode[0] == nil || d.TemperatureMax[0] == nil {
		return nil, nil
	}
	return &core.WeatherSample{Code: *d.WeatherCode[0], TemperatureC: *d.TemperatureMax[0]}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if err := c.limit.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
