package openf1

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/model"
)

// RestOptions configures the REST client.
type RestOptions struct {
	BaseURL       string
	CachePath     string // "" disables the response cache
	CacheTTL      time.Duration
	RetryCount    int
	RatePerSecond float64
}

// RestClient talks to the OpenF1 API. It rate-limits requests, retries
// with backoff, and caches bodies in SQLite. Per the Client contract,
// failed calls log and return empty slices.
type RestClient struct {
	base    string
	http    *resty.Client
	limiter *rate.Limiter
	cache   *responseCache
}

// NewRestClient creates a REST-backed telemetry client.
func NewRestClient(opts RestOptions) (*RestClient, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openf1.org/v1"
	}
	if opts.RetryCount <= 0 {
		opts.RetryCount = 3
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 4
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}

	httpClient := resty.New().
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		SetTimeout(10 * time.Second).
		SetHeader("User-Agent", "f1ri/1.0")

	c := &RestClient{
		base:    opts.BaseURL,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1),
	}

	if opts.CachePath != "" {
		cache, err := newResponseCache(opts.CachePath, opts.CacheTTL)
		if err != nil {
			return nil, err
		}
		c.cache = cache
	}

	return c, nil
}

// Close releases the response cache.
func (c *RestClient) Close() {
	if c.cache != nil {
		c.cache.close()
	}
}

// fetch runs one GET against the API, serving from cache when possible.
func (c *RestClient) fetch(ctx context.Context, endpoint string, params map[string]string) []Record {
	key := cacheKey(endpoint, params)
	if c.cache != nil {
		if body, ok := c.cache.get(key); ok {
			logging.Debug("OpenF1 cache hit", "endpoint", endpoint)
			return decodeRecords(body)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		logging.Warn("OpenF1 request canceled", "endpoint", endpoint, "error", err)
		return nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(c.base + "/" + endpoint)
	if err != nil {
		logging.Error("OpenF1 request failed", "endpoint", endpoint, "error", err)
		return nil
	}
	if resp.StatusCode() != 200 {
		logging.Error("OpenF1 request rejected",
			"endpoint", endpoint,
			"status", resp.StatusCode(),
			"body_length", len(resp.Body()))
		return nil
	}

	body := resp.Body()
	records := decodeRecords(body)
	if c.cache != nil && records != nil {
		c.cache.put(key, body)
	}

	logging.Debug("OpenF1 fetched", "endpoint", endpoint, "records", len(records))
	return records
}

// decodeRecords accepts either a JSON array or a single object.
func decodeRecords(body []byte) []Record {
	var records []Record
	if err := json.Unmarshal(body, &records); err == nil {
		return records
	}

	var single Record
	if err := json.Unmarshal(body, &single); err == nil && len(single) > 0 {
		return []Record{single}
	}

	logging.Warn("OpenF1 response not decodable", "body_length", len(body))
	return nil
}

func (c *RestClient) SearchSessions(ctx context.Context, year int, eventName, kind string) []Record {
	params := map[string]string{"year": strconv.Itoa(year)}
	if label := sessionLabel(kind); label != "" {
		params["session_name"] = label
	}

	records := c.fetch(ctx, "sessions", params)
	if eventName == "" {
		return records
	}

	var matched []Record
	for _, rec := range records {
		if sessionMatchesName(rec, eventName) {
			matched = append(matched, rec)
		}
	}
	return matched
}

func (c *RestClient) GetControlMessages(ctx context.Context, sessionID string) []Record {
	return c.fetch(ctx, "race_control", sessionParams(sessionID, 0))
}

func (c *RestClient) GetLaps(ctx context.Context, sessionID string, driver int) []Record {
	return c.fetch(ctx, "laps", sessionParams(sessionID, driver))
}

func (c *RestClient) GetStints(ctx context.Context, sessionID string, driver int) []Record {
	return c.fetch(ctx, "stints", sessionParams(sessionID, driver))
}

func (c *RestClient) GetPitStops(ctx context.Context, sessionID string, driver int) []Record {
	return c.fetch(ctx, "pit", sessionParams(sessionID, driver))
}

func (c *RestClient) GetDrivers(ctx context.Context, sessionID string) []Record {
	return c.fetch(ctx, "drivers", sessionParams(sessionID, 0))
}

func (c *RestClient) GetWeather(ctx context.Context, sessionID string) []Record {
	return c.fetch(ctx, "weather", sessionParams(sessionID, 0))
}

func (c *RestClient) GetPositions(ctx context.Context, sessionID string) []Record {
	return c.fetch(ctx, "position", sessionParams(sessionID, 0))
}

func (c *RestClient) GetOvertakes(ctx context.Context, sessionID string) []Record {
	return c.fetch(ctx, "overtakes", sessionParams(sessionID, 0))
}

func (c *RestClient) GetStartingGrid(ctx context.Context, sessionID string) []Record {
	return c.fetch(ctx, "starting_grid", sessionParams(sessionID, 0))
}

func (c *RestClient) GetSessionResult(ctx context.Context, sessionID string) []Record {
	return c.fetch(ctx, "session_result", sessionParams(sessionID, 0))
}

func sessionParams(sessionID string, driver int) map[string]string {
	params := map[string]string{"session_key": sessionID}
	if driver > 0 {
		params["driver_number"] = strconv.Itoa(driver)
	}
	return params
}

// sessionLabel maps a session kind onto the API's session_name values.
// Empty or unknown kinds return "" and add no filter.
func sessionLabel(kind string) string {
	if kind == "" {
		return ""
	}
	switch model.ParseSessionKind(kind) {
	case model.SessionRace:
		return "Race"
	case model.SessionQualifying:
		return "Qualifying"
	case model.SessionSprint:
		return "Sprint"
	case model.SessionPractice1:
		return "Practice 1"
	case model.SessionPractice2:
		return "Practice 2"
	case model.SessionPractice3:
		return "Practice 3"
	}
	return ""
}
