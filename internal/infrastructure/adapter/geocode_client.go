package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/ctateo21/homelead/internal/domain/port"
)

// ---------------------------------------------------------------------------
// Census-format geocoder
// ---------------------------------------------------------------------------

const (
	censusOneLinePath = "/geocoder/locations/onelineaddress"
	censusBenchmark   = "Public_AR_Current"
	maxAddressMatches = 5
)

// GeocodeConfig configures the HTTP geocoder.
type GeocodeConfig struct {
	BaseURL string
	APIKey  string
	// RPS limits outgoing requests. Zero means 5.
	RPS        float64
	MaxRetries int
	Backoff    time.Duration
	Timeout    time.Duration
}

type censusResponse struct {
	Result struct {
		AddressMatches []censusMatch `json:"addressMatches"`
	} `json:"result"`
}

type censusMatch struct {
	Coordinates struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"coordinates"`
	TigerLine struct {
		Side    string `json:"side"`
		TigerID string `json:"tigerLineId"`
	} `json:"tigerLine"`
	AddressComponents struct {
		City  string `json:"city"`
		State string `json:"state"`
		Zip   string `json:"zip"`
	} `json:"addressComponents"`
	MatchedAddress string `json:"matchedAddress"`
}

// retryableError marks failures worth another attempt.
type retryableError struct{ err error }

func (e retryableError) Error() string { return e.err.Error() }
func (e retryableError) Unwrap() error { return e.err }

// GeocodeClient implements port.AddressLookup against a Census-compatible
// one-line address endpoint.
type GeocodeClient struct {
	cfg        GeocodeConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewGeocodeClient creates a client. httpClient may be nil.
func NewGeocodeClient(cfg GeocodeConfig, httpClient *http.Client) *GeocodeClient {
	if cfg.RPS <= 0 {
		cfg.RPS = 5
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 200 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	burst := int(cfg.RPS)
	if burst < 1 {
		burst = 1
	}
	return &GeocodeClient{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RPS), burst),
	}
}

// LookupAddress returns up to five candidates for text. No match is an
// empty slice, not an error.
func (c *GeocodeClient) LookupAddress(ctx context.Context, text string) ([]port.AddressMatch, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []port.AddressMatch{}, nil
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.Backoff * (1 << uint(attempt-1))
			jitter := time.Duration(rand.Int63n(int64(backoff)/2 + 1))
			select {
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "geocode: wait for retry")
			case <-time.After(backoff + jitter):
			}
		}

		matches, err := c.lookupOnce(ctx, text)
		if err == nil {
			return matches, nil
		}
		lastErr = err
		var re retryableError
		if !errors.As(err, &re) {
			return nil, err
		}
	}
	return nil, eris.Wrapf(lastErr, "geocode: exhausted %d retries", c.cfg.MaxRetries)
}

func (c *GeocodeClient) lookupOnce(ctx context.Context, text string) ([]port.AddressMatch, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: rate limit")
	}

	params := url.Values{
		"address":   {text},
		"benchmark": {censusBenchmark},
		"format":    {"json"},
	}
	if c.cfg.APIKey != "" {
		params.Set("key", c.cfg.APIKey)
	}
	reqURL := strings.TrimRight(c.cfg.BaseURL, "/") + censusOneLinePath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrap(err, "geocode: request")
		}
		return nil, retryableError{eris.Wrap(err, "geocode: request")}
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, retryableError{eris.Errorf("geocode: server returned status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, eris.Errorf("geocode: server returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: read body")
	}
	var parsed censusResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "geocode: parse response")
	}

	out := make([]port.AddressMatch, 0, len(parsed.Result.AddressMatches))
	for _, m := range parsed.Result.AddressMatches {
		if len(out) == maxAddressMatches {
			break
		}
		placeID := m.TigerLine.TigerID + m.TigerLine.Side
		if placeID == "" {
			placeID = shortHash(normalizeAddress(m.MatchedAddress))
		}
		out = append(out, port.AddressMatch{
			FormattedAddress: m.MatchedAddress,
			PlaceID:          placeID,
			City:             m.AddressComponents.City,
			State:            m.AddressComponents.State,
			Zip:              m.AddressComponents.Zip,
			Lat:              m.Coordinates.Y,
			Lng:              m.Coordinates.X,
		})
	}
	return out, nil
}
