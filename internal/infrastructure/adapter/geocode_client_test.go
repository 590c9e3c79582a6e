package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const censusTwoMatches = `{
  "result": {
    "addressMatches": [
      {
        "coordinates": {"x": -82.4572, "y": 27.9506},
        "tigerLine": {"side": "L", "tigerLineId": "51234567"},
        "addressComponents": {"city": "TAMPA", "state": "FL", "zip": "33602"},
        "matchedAddress": "100 N TAMPA ST, TAMPA, FL, 33602"
      },
      {
        "coordinates": {"x": -82.4581, "y": 27.9511},
        "tigerLine": {"side": "R", "tigerLineId": "51234568"},
        "addressComponents": {"city": "TAMPA", "state": "FL", "zip": "33602"},
        "matchedAddress": "100 S TAMPA ST, TAMPA, FL, 33602"
      }
    ]
  }
}`

func newTestGeocoder(t *testing.T, handler http.HandlerFunc, retries int) *GeocodeClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeocodeClient(GeocodeConfig{
		BaseURL:    srv.URL,
		RPS:        1000,
		MaxRetries: retries,
		Backoff:    time.Millisecond,
	}, srv.Client())
}

func TestGeocodeClient_LookupAddress(t *testing.T) {
	ctx := context.Background()

	t.Run("maps matches", func(t *testing.T) {
		var gotQuery string
		c := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, censusOneLinePath, r.URL.Path)
			assert.Equal(t, censusBenchmark, r.URL.Query().Get("benchmark"))
			assert.Equal(t, "json", r.URL.Query().Get("format"))
			gotQuery = r.URL.Query().Get("address")
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, censusTwoMatches)
		}, 0)

		matches, err := c.LookupAddress(ctx, "  100 Tampa St  ")
		require.NoError(t, err)
		assert.Equal(t, "100 Tampa St", gotQuery)
		require.Len(t, matches, 2)
		assert.Equal(t, "100 N TAMPA ST, TAMPA, FL, 33602", matches[0].FormattedAddress)
		assert.Equal(t, "51234567L", matches[0].PlaceID)
		assert.Equal(t, "33602", matches[0].Zip)
		assert.Equal(t, "FL", matches[0].State)
		assert.InDelta(t, 27.9506, matches[0].Lat, 1e-9)
		assert.InDelta(t, -82.4572, matches[0].Lng, 1e-9)
	})

	t.Run("no match is empty", func(t *testing.T) {
		c := newTestGeocoder(t, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"result":{"addressMatches":[]}}`)
		}, 0)

		matches, err := c.LookupAddress(ctx, "nowhere")
		require.NoError(t, err)
		assert.NotNil(t, matches)
		assert.Empty(t, matches)
	})

	t.Run("blank text skips the request", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestGeocoder(t, func(http.ResponseWriter, *http.Request) { calls.Add(1) }, 0)

		matches, err := c.LookupAddress(ctx, "   ")
		require.NoError(t, err)
		assert.Empty(t, matches)
		assert.Zero(t, calls.Load())
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestGeocoder(t, func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			fmt.Fprint(w, censusTwoMatches)
		}, 3)

		matches, err := c.LookupAddress(ctx, "100 Tampa St")
		require.NoError(t, err)
		assert.Len(t, matches, 2)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestGeocoder(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}, 2)

		_, err := c.LookupAddress(ctx, "100 Tampa St")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exhausted 2 retries")
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestGeocoder(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}, 3)

		_, err := c.LookupAddress(ctx, "100 Tampa St")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 400")
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("malformed body", func(t *testing.T) {
		c := newTestGeocoder(t, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{not json`)
		}, 0)

		_, err := c.LookupAddress(ctx, "100 Tampa St")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse response")
	})

	t.Run("caps candidates at five", func(t *testing.T) {
		c := newTestGeocoder(t, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"result":{"addressMatches":[`)
			for i := 0; i < 8; i++ {
				if i > 0 {
					fmt.Fprint(w, ",")
				}
				fmt.Fprintf(w, `{"matchedAddress":"%d MAIN ST","tigerLine":{"side":"L","tigerLineId":"%d"}}`, i, i)
			}
			fmt.Fprint(w, `]}}`)
		}, 0)

		matches, err := c.LookupAddress(ctx, "main st")
		require.NoError(t, err)
		assert.Len(t, matches, maxAddressMatches)
	})

	t.Run("canceled context", func(t *testing.T) {
		c := newTestGeocoder(t, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, censusTwoMatches)
		}, 0)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := c.LookupAddress(cctx, "100 Tampa St")
		assert.Error(t, err)
	})
}
