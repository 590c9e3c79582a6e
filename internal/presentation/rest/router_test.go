package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctateo21/homelead/internal/app"
	"github.com/ctateo21/homelead/internal/application/dto"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/observability"
)

func newTestRouter(t *testing.T, opts RouterOptions, checks map[string]ReadinessCheck) http.Handler {
	t.Helper()
	uc, err := app.NewInMemory()
	require.NoError(t, err)

	logger := observability.NopLogger()
	if opts.CORSOrigins == nil {
		opts.CORSOrigins = []string{"*"}
	}
	return NewRouter(NewWizardHandler(uc, logger), NewHealthHandler("wizard-service", checks, logger), opts, logger)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRouter_WizardFlow(t *testing.T) {
	h := newTestRouter(t, RouterOptions{}, nil)

	rec := do(t, h, http.MethodPost, "/api/v1/sessions/r-1/steps/service-selection", `{"service":"mortgage"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "mortgage-type", decode[dto.SessionResponse](t, rec).CurrentStep)

	rec = do(t, h, http.MethodPost, "/api/v1/sessions/r-1/steps/mortgage-type", `{"type":"purchase"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/v1/sessions/r-1/steps/property-location/draft", `{"address":"601 E Kennedy"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	session := decode[dto.SessionResponse](t, rec)
	assert.Equal(t, "property-location", session.CurrentStep)

	rec = do(t, h, http.MethodPost, "/api/v1/sessions/r-1/back", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "mortgage-type", decode[dto.SessionResponse](t, rec).CurrentStep)

	rec = do(t, h, http.MethodGet, "/api/v1/sessions/r-1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "mortgage-purchase", decode[dto.SessionResponse](t, rec).ServiceType)

	rec = do(t, h, http.MethodGet, "/api/v1/sessions/r-1/profile", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "r-1", decode[dto.ProfileResponse](t, rec).SessionID)

	rec = do(t, h, http.MethodPost, "/api/v1/sessions/r-1/verify/plaid", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	verification := decode[dto.VerificationResponse](t, rec)
	assert.True(t, verification.Verified)
	require.NotNil(t, verification.Liabilities)
	assert.NotEmpty(t, verification.Liabilities.Accounts)
}

func TestRouter_Lookups(t *testing.T) {
	h := newTestRouter(t, RouterOptions{}, nil)

	t.Run("address", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/lookups/address?q=601+E+Kennedy+Blvd+33602", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[dto.AddressLookupResponse](t, rec)
		require.Len(t, resp.Matches, 1)
		assert.Equal(t, "33602", resp.Matches[0].Zip)
	})

	t.Run("address requires q", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/lookups/address", "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decode[errorBody](t, rec).Fields, "q")
	})

	t.Run("value", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/lookups/value?address=601+E+Kennedy+Blvd&zip=33602", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[dto.ValueEstimateResponse](t, rec)
		require.NotNil(t, resp.Zestimate)
		require.NotNil(t, resp.ZipAverage)
		assert.Equal(t, "385000", resp.ZipAverage.String())
	})

	t.Run("tax", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/lookups/tax?address=1+Main+St&value=400000&homestead=true", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[dto.TaxEstimateResponse](t, rec)
		assert.Equal(t, "7175", resp.AnnualTax.String())
	})

	t.Run("tax with bad value", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/lookups/tax?address=1+Main+St&value=lots", "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decode[errorBody](t, rec).Fields, "value")
	})

	t.Run("tax provider failure", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/lookups/tax?value=400000", "")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestRouter_Errors(t *testing.T) {
	h := newTestRouter(t, RouterOptions{}, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"invalid payload", http.MethodPost, "/api/v1/sessions/e-1/steps/service-selection", `{"service":"boats"}`, http.StatusUnprocessableEntity},
		{"malformed json", http.MethodPost, "/api/v1/sessions/e-1/steps/service-selection", `{"service":`, http.StatusBadRequest},
		{"unknown step", http.MethodPost, "/api/v1/sessions/e-1/steps/horoscope", `{}`, http.StatusBadRequest},
		{"unknown session", http.MethodGet, "/api/v1/sessions/missing", "", http.StatusNotFound},
		{"unknown provider", http.MethodPost, "/api/v1/sessions/e-1/verify/astrology", "", http.StatusUnprocessableEntity},
		{"wrong method", http.MethodDelete, "/api/v1/sessions/e-1", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_RateLimit(t *testing.T) {
	h := newTestRouter(t, RouterOptions{RateRPS: 0.001, RateBurst: 2}, nil)

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodGet, "/api/v1/sessions/missing", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}
	rec := do(t, h, http.MethodGet, "/api/v1/sessions/missing", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Health probes are not rate limited.
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", "").Code)
}

func TestRouter_CORS(t *testing.T) {
	h := newTestRouter(t, RouterOptions{CORSOrigins: []string{"https://homelead.example"}}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sessions/c-1", nil)
	req.Header.Set("Origin", "https://homelead.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://homelead.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Health(t *testing.T) {
	t.Run("liveness", func(t *testing.T) {
		h := newTestRouter(t, RouterOptions{}, nil)
		rec := do(t, h, http.MethodGet, "/healthz", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
	})

	t.Run("readiness failure", func(t *testing.T) {
		h := newTestRouter(t, RouterOptions{}, map[string]ReadinessCheck{
			"postgres": func(context.Context) error { return errors.New("connection refused") },
		})
		rec := do(t, h, http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "connection refused")
	})

	t.Run("metrics", func(t *testing.T) {
		metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "wizard_steps_submitted_total 3\n")
		})
		h := newTestRouter(t, RouterOptions{Metrics: metrics}, nil)
		rec := do(t, h, http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "wizard_steps_submitted_total")
	})
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, StatusCode(port.NewProviderError("truv", errors.New("down"))))
	assert.Equal(t, http.StatusNotFound, StatusCode(fmt.Errorf("%w: x", valueobject.ErrSessionNotFound)))
	assert.Equal(t, http.StatusConflict, StatusCode(valueobject.ErrNoPreviousStep))
	assert.Equal(t, http.StatusConflict, StatusCode(valueobject.ErrServiceTypeMismatch))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("boom")))
}
