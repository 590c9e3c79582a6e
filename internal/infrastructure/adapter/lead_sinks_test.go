package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctateo21/homelead/internal/domain/event"
	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/pkg/observability"
)

func sampleLead(t *testing.T, serviceType string) event.SessionCompleted {
	t.Helper()
	profile, err := json.Marshal(model.LoanProfile{
		LoanType:      "conventional",
		PurchasePrice: decimal.NewFromInt(400_000),
		DownPayment:   decimal.NewFromInt(80_000),
		LoanAmount:    decimal.NewFromInt(320_000),
		InterestRate:  decimal.RequireFromString("6.75"),
		TermYears:     30,
		DTIRatio:      decimal.RequireFromString("31.5"),
		LTVRatio:      decimal.NewFromInt(80),
	})
	require.NoError(t, err)

	return event.NewSessionCompleted("sess-9", serviceType,
		event.Contact{FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com", Phone: "8135550100", Consent: true},
		map[string]json.RawMessage{
			"property-location":  json.RawMessage(`{"address":"1 Main St","zip":"33602"}`),
			"real-estate-intent": json.RawMessage(`{"intent":"sell"}`),
			"insurance-type":     json.RawMessage(`{"insuranceType":"home"}`),
		},
		profile,
		time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	)
}

// captureServer records the last request body.
func captureServer(t *testing.T, status int) (*httptest.Server, *[]byte, *http.Header) {
	t.Helper()
	var (
		body   []byte
		header http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		header = r.Header.Clone()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &body, &header
}

func TestAriveSink(t *testing.T) {
	ctx := context.Background()
	srv, body, header := captureServer(t, http.StatusCreated)
	lead := sampleLead(t, "mortgage-refinance")

	sink := NewAriveSink(srv.URL, srv.Client(), observability.NopLogger())
	require.NoError(t, sink.Forward(ctx, lead))
	assert.Equal(t, SinkArive, sink.Name())

	assert.Equal(t, "application/json", header.Get("Content-Type"))
	assert.Equal(t, lead.EventID(), header.Get("Idempotency-Key"))

	var got ariveLeadBody
	require.NoError(t, json.Unmarshal(*body, &got))
	assert.Equal(t, "sess-9", got.ExternalID)
	assert.Equal(t, "Refinance", got.Loan.Purpose)
	assert.Equal(t, "320000.00", got.Loan.LoanAmount)
	assert.Equal(t, 360, got.Loan.TermMonths)
	assert.Equal(t, "Ana", got.Borrower.FirstName)
	assert.True(t, got.Consent)
	assert.JSONEq(t, `{"address":"1 Main St","zip":"33602"}`, string(got.Address))
}

func TestNetCalcSheetSink(t *testing.T) {
	srv, body, _ := captureServer(t, http.StatusOK)
	sink := NewNetCalcSheetSink(srv.URL, srv.Client(), observability.NopLogger())

	require.NoError(t, sink.Forward(context.Background(), sampleLead(t, "real-estate")))

	var got netCalcSheetBody
	require.NoError(t, json.Unmarshal(*body, &got))
	assert.Equal(t, "Ana Lopez", got.Name)
	assert.JSONEq(t, `{"intent":"sell"}`, string(got.Intent))
	assert.Equal(t, "2026-04-01T10:00:00Z", got.Submitted)
}

func TestCanopySink(t *testing.T) {
	srv, body, _ := captureServer(t, http.StatusAccepted)
	sink := NewCanopySink(srv.URL, srv.Client(), observability.NopLogger())

	require.NoError(t, sink.Forward(context.Background(), sampleLead(t, "insurance")))

	var got canopyBody
	require.NoError(t, json.Unmarshal(*body, &got))
	assert.Equal(t, "ana@example.com", got.Consumer.Email)
	assert.JSONEq(t, `{"insuranceType":"home"}`, string(got.Coverage))
}

func TestHTTPLeadSink_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("duplicate borrower"))
	}))
	t.Cleanup(srv.Close)

	sink := NewAriveSink(srv.URL, srv.Client(), observability.NopLogger())
	err := sink.Forward(context.Background(), sampleLead(t, "mortgage-purchase"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "duplicate borrower")
}

func TestHTTPLeadSink_BadProfile(t *testing.T) {
	lead := sampleLead(t, "mortgage-purchase")
	lead.Profile = json.RawMessage(`"nope"`)

	err := NewAriveSink("", nil, observability.NopLogger()).Forward(context.Background(), lead)
	assert.ErrorContains(t, err, "decode profile")
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	sink := NewLogSink(logger)
	require.NoError(t, sink.Forward(context.Background(), sampleLead(t, "home-services")))
	assert.Equal(t, SinkLog, sink.Name())
	assert.Contains(t, buf.String(), `"sink":"log"`)
	assert.Contains(t, buf.String(), `"session_id":"sess-9"`)
}
