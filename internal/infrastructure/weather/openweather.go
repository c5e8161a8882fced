// Package weather implements the historical-weather collaborator against the
// OpenWeatherMap geocoding and timemachine APIs.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maverickins/claims-intake/internal/bootstrap/config"
	"github.com/maverickins/claims-intake/internal/bootstrap/logging"
	"github.com/maverickins/claims-intake/internal/domain/claim"
	"github.com/maverickins/claims-intake/internal/errs"
	"github.com/maverickins/claims-intake/internal/ports"
)

var errNoAPIKey = errors.New("weather api key not configured")

// Coordinates for a location are stable, but a long expiry keeps stale
// entries from surviving forever if the upstream data improves.
const geocodeCacheTTL = 30 * 24 * time.Hour

// OpenWeatherClient resolves a free-text location or postcode to coordinates
// and fetches the hourly observations around a point in time. Postcode-style
// locations are disambiguated with the configured country qualifier.
//
// Errors here are expected operating conditions for the pipeline, which
// absorbs any failure into an uncorroborated result.
type OpenWeatherClient struct {
	apiKey     string
	geocodeURL string
	historyURL string
	country    string
	httpClient *http.Client
	cache      ports.Cache
}

// NewOpenWeatherClient builds the client. cache may be nil, in which case
// every lookup geocodes against the upstream API.
func NewOpenWeatherClient(cfg config.WeatherConfig, cache ports.Cache) *OpenWeatherClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &OpenWeatherClient{
		apiKey:     cfg.APIKey,
		geocodeURL: cfg.GeocodeURL,
		historyURL: cfg.HistoryURL,
		country:    cfg.Country,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
	}
}

type geocodeEntry struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type historyResponse struct {
	Hourly []struct {
		Rain struct {
			OneHour float64 `json:"1h"`
		} `json:"rain"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
	} `json:"hourly"`
}

// Lookup fetches the hourly observations covering the instant `at`. The
// caller fixes `at` to an unambiguous UTC point; this client forwards it as
// Unix seconds, the timestamp convention of the timemachine endpoint.
func (c *OpenWeatherClient) Lookup(ctx context.Context, location string, at time.Time) ([]claim.HourlyObservation, error) {
	if c.apiKey == "" {
		return nil, errNoAPIKey
	}

	lat, lon, err := c.geocode(ctx, location)
	if err != nil {
		return nil, errs.Wrap(err, "geocode location")
	}

	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("dt", strconv.FormatInt(at.UTC().Unix(), 10))
	query.Set("appid", c.apiKey)

	var parsed historyResponse
	if err := c.getJSON(ctx, c.historyURL+"?"+query.Encode(), &parsed); err != nil {
		return nil, errs.Wrap(err, "fetch historical weather")
	}

	hours := make([]claim.HourlyObservation, 0, len(parsed.Hourly))
	for _, h := range parsed.Hourly {
		conditions := make([]string, 0, len(h.Weather))
		for _, w := range h.Weather {
			conditions = append(conditions, w.Main)
		}
		hours = append(hours, claim.HourlyObservation{
			PrecipMM:   decimal.NewFromFloat(h.Rain.OneHour),
			Conditions: conditions,
		})
	}
	return hours, nil
}

func (c *OpenWeatherClient) geocode(ctx context.Context, location string) (lat, lon float64, err error) {
	cacheKey := "geocode:" + location + "," + c.country
	if lat, lon, ok := c.cachedCoordinates(ctx, cacheKey); ok {
		return lat, lon, nil
	}

	query := url.Values{}
	query.Set("q", location+","+c.country)
	query.Set("limit", "1")
	query.Set("appid", c.apiKey)

	var entries []geocodeEntry
	if err := c.getJSON(ctx, c.geocodeURL+"?"+query.Encode(), &entries); err != nil {
		return 0, 0, err
	}
	if len(entries) == 0 {
		return 0, 0, fmt.Errorf("no geocode result for %q", location)
	}

	c.storeCoordinates(ctx, cacheKey, entries[0].Lat, entries[0].Lon)
	return entries[0].Lat, entries[0].Lon, nil
}

// Cache traffic is best effort, a broken cache never fails a lookup.
func (c *OpenWeatherClient) cachedCoordinates(ctx context.Context, key string) (lat, lon float64, ok bool) {
	if c.cache == nil {
		return 0, 0, false
	}

	value, found, err := c.cache.Get(ctx, key)
	if err != nil {
		logging.Warn(ctx, "geocode cache read failed", slog.String("error", err.Error()))
		return 0, 0, false
	}
	if !found {
		return 0, 0, false
	}

	rawLat, rawLon, split := strings.Cut(value, " ")
	if !split {
		return 0, 0, false
	}
	lat, latErr := strconv.ParseFloat(rawLat, 64)
	lon, lonErr := strconv.ParseFloat(rawLon, 64)
	if latErr != nil || lonErr != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

func (c *OpenWeatherClient) storeCoordinates(ctx context.Context, key string, lat, lon float64) {
	if c.cache == nil {
		return
	}

	value := strconv.FormatFloat(lat, 'f', -1, 64) + " " + strconv.FormatFloat(lon, 'f', -1, 64)
	if err := c.cache.Set(ctx, key, value, geocodeCacheTTL); err != nil {
		logging.Warn(ctx, "geocode cache write failed", slog.String("error", err.Error()))
	}
}

func (c *OpenWeatherClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errs.Wrap(err, "build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.Wrap(err, "decode response")
	}
	return nil
}
