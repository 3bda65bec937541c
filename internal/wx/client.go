package wx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/skywatch/metarboard/internal/config"
	"github.com/skywatch/metarboard/pkg/logger"
)

// ErrInvalidStation is returned when a caller-supplied station
// identifier fails the basic shape check, before any network call.
var ErrInvalidStation = errors.New("station identifier must be 4 characters")

// Client handles HTTP requests to the aviation weather API
type Client struct {
	config     config.WxConfig
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new aviation weather API client
func NewClient(cfg config.WxConfig, log *logger.Logger) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		},
		logger: log.Named("wx-client"),
	}
}

// FetchMETARsByState fetches all current METAR records for one state
// partition (e.g. "WA" queries @WA)
func (c *Client) FetchMETARsByState(state string) ([]METARRecord, error) {
	reqURL := fmt.Sprintf("%s/metar?ids=%s&format=json&hours=%d",
		c.config.APIBaseURL, url.QueryEscape("@"+state), c.config.RecencyWindowHours)

	var result []METARRecord
	if err := c.fetchWithRetry(reqURL, "metar", state, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// FetchMETARByID fetches the latest METAR record for one station. The
// identifier shape is checked before any network call.
func (c *Client) FetchMETARByID(stationID string) (*METARRecord, error) {
	if len(stationID) != 4 {
		return nil, ErrInvalidStation
	}

	reqURL := fmt.Sprintf("%s/metar?ids=%s&format=json&hours=%d",
		c.config.APIBaseURL, url.QueryEscape(stationID), c.config.RecencyWindowHours)

	var result []METARRecord
	if err := c.fetchWithRetry(reqURL, "metar", stationID, &result); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("no METAR data found for %s", stationID)
	}

	// The first element is the latest observation
	return &result[0], nil
}

// FetchTAFByID fetches the latest TAF record for one station
func (c *Client) FetchTAFByID(stationID string) (*TAFRecord, error) {
	if len(stationID) != 4 {
		return nil, ErrInvalidStation
	}

	reqURL := fmt.Sprintf("%s/taf?ids=%s&format=json", c.config.APIBaseURL, url.QueryEscape(stationID))

	var result []TAFRecord
	if err := c.fetchWithRetry(reqURL, "taf", stationID, &result); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("no TAF data found for %s", stationID)
	}
	return &result[0], nil
}

// fetchWithRetry performs an HTTP request with retry logic and exponential backoff
func (c *Client) fetchWithRetry(reqURL, dataType, key string, target interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff between retries
			backoffDuration := time.Duration(500*(1<<uint(attempt-1))) * time.Millisecond
			c.logger.Info("Retrying weather data fetch",
				logger.String("type", dataType),
				logger.String("key", key),
				logger.Int("attempt", attempt),
				logger.String("backoff", backoffDuration.String()))
			time.Sleep(backoffDuration)
		}

		resp, err := c.httpClient.Get(reqURL)
		if err != nil {
			lastErr = fmt.Errorf("error making request to weather API: %w", err)
			c.logger.Warn("Weather API request failed, may retry",
				logger.String("type", dataType),
				logger.String("key", key),
				logger.Error(err),
				logger.Int("attempt", attempt+1),
				logger.Int("max_attempts", c.config.MaxRetries+1))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			c.logger.Warn("Weather API returned non-OK status, may retry",
				logger.String("type", dataType),
				logger.String("key", key),
				logger.Int("status_code", resp.StatusCode),
				logger.Int("attempt", attempt+1),
				logger.Int("max_attempts", c.config.MaxRetries+1))
			continue
		}

		err = json.NewDecoder(resp.Body).Decode(target)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("error decoding weather data: %w", err)
			c.logger.Warn("Failed to decode weather data, may retry",
				logger.String("type", dataType),
				logger.String("key", key),
				logger.Error(err),
				logger.Int("attempt", attempt+1),
				logger.Int("max_attempts", c.config.MaxRetries+1))
			continue
		}

		if attempt > 0 {
			c.logger.Info("Successfully fetched weather data after retries",
				logger.String("type", dataType),
				logger.String("key", key),
				logger.Int("attempts_needed", attempt+1))
		}
		return nil
	}

	c.logger.Error("All attempts to fetch weather data failed",
		logger.String("type", dataType),
		logger.String("key", key),
		logger.Error(lastErr),
		logger.Int("max_attempts", c.config.MaxRetries+1))
	return lastErr
}
