package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctateo21/homelead/internal/application/dto"
	"github.com/ctateo21/homelead/internal/application/usecase"
	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/money"
	"github.com/ctateo21/homelead/pkg/observability"
	"github.com/ctateo21/homelead/pkg/testutil"
)

func TestLookupGuard(t *testing.T) {
	t.Run("only the newest lookup is accepted", func(t *testing.T) {
		g := usecase.NewLookupGuard()
		older := g.Begin("s-1", usecase.LookupAddress)
		newer := g.Begin("s-1", usecase.LookupAddress)

		assert.True(t, g.Accept("s-1", usecase.LookupAddress, newer))
		assert.False(t, g.Accept("s-1", usecase.LookupAddress, older))
	})

	t.Run("an older lookup finishing first is still stale", func(t *testing.T) {
		g := usecase.NewLookupGuard()
		older := g.Begin("s-1", usecase.LookupValue)
		newer := g.Begin("s-1", usecase.LookupValue)

		assert.False(t, g.Accept("s-1", usecase.LookupValue, older))
		assert.True(t, g.Accept("s-1", usecase.LookupValue, newer))
	})

	t.Run("kinds and sessions are independent", func(t *testing.T) {
		g := usecase.NewLookupGuard()
		a := g.Begin("s-1", usecase.LookupAddress)
		v := g.Begin("s-1", usecase.LookupValue)
		other := g.Begin("s-2", usecase.LookupAddress)

		assert.True(t, g.Accept("s-1", usecase.LookupAddress, a))
		assert.True(t, g.Accept("s-1", usecase.LookupValue, v))
		assert.True(t, g.Accept("s-2", usecase.LookupAddress, other))
	})

	t.Run("lookups without a session are never stale", func(t *testing.T) {
		g := usecase.NewLookupGuard()
		assert.True(t, g.Accept("", usecase.LookupAddress, g.Begin("", usecase.LookupAddress)))
	})
}

func TestLookupAddress_Execute(t *testing.T) {
	newUC := func(lookup *mockAddressLookup, guard *usecase.LookupGuard) *usecase.LookupAddressUseCase {
		return usecase.NewLookupAddressUseCase(lookup, guard, observability.NopMetrics(), observability.NopLogger())
	}

	t.Run("returns candidates", func(t *testing.T) {
		resp, err := newUC(&mockAddressLookup{}, usecase.NewLookupGuard()).Execute(context.Background(),
			dto.AddressLookupRequest{SessionID: "s-1", Query: "601 E Kennedy"})

		require.NoError(t, err)
		require.Len(t, resp.Matches, 1)
		assert.Equal(t, "33602", resp.Matches[0].Zip)
		assert.False(t, resp.Stale)
	})

	t.Run("marks a superseded response stale", func(t *testing.T) {
		guard := usecase.NewLookupGuard()
		lookup := &mockAddressLookup{
			lookupFunc: func(_ context.Context, _ string) ([]port.AddressMatch, error) {
				// the user typed again while this request was in flight
				guard.Begin("s-1", usecase.LookupAddress)
				return nil, nil
			},
		}

		resp, err := newUC(lookup, guard).Execute(context.Background(),
			dto.AddressLookupRequest{SessionID: "s-1", Query: "601 E"})

		require.NoError(t, err)
		assert.True(t, resp.Stale)
		assert.NotNil(t, resp.Matches)
	})

	t.Run("requires a query", func(t *testing.T) {
		_, err := newUC(&mockAddressLookup{}, usecase.NewLookupGuard()).Execute(context.Background(),
			dto.AddressLookupRequest{Query: "  "})

		var verr *model.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "q")
	})

	t.Run("wraps provider failures", func(t *testing.T) {
		lookup := &mockAddressLookup{
			lookupFunc: func(_ context.Context, _ string) ([]port.AddressMatch, error) {
				return nil, errUnavailable("geocoder")
			},
		}

		_, err := newUC(lookup, usecase.NewLookupGuard()).Execute(context.Background(),
			dto.AddressLookupRequest{Query: "601 E Kennedy"})

		assert.True(t, port.IsProviderError(err))
	})
}

func TestEstimateValue_Execute(t *testing.T) {
	newUC := func(store *mockSessionStore, estimator *mockValueEstimator, zips *mockZipAverage) (*usecase.EstimateValueUseCase, *mockStepWriter) {
		writer := &mockStepWriter{}
		metrics, logger := observability.NopMetrics(), observability.NopLogger()
		prefill := usecase.NewDraftPrefiller(store, writer, metrics, logger)
		return usecase.NewEstimateValueUseCase(estimator, zips, usecase.NewLookupGuard(), prefill, metrics, logger), writer
	}
	onPropertyValue := []model.StepPayload{
		model.ServiceSelection{Service: "mortgage"},
		model.MortgageType{Type: "refinance"},
		model.PropertyLocation{Address: "601 E Kennedy Blvd", Zip: "33602"},
	}

	t.Run("fetches both figures and prefills the draft", func(t *testing.T) {
		store := newMockSessionStore()
		seedSession(t, store, "s-1", onPropertyValue...)
		uc, writer := newUC(store, &mockValueEstimator{}, &mockZipAverage{})

		resp, err := uc.Execute(context.Background(), dto.ValueEstimateRequest{
			SessionID: "s-1", Address: "601 E Kennedy Blvd", Zip: "33602",
		})

		require.NoError(t, err)
		require.NotNil(t, resp.Zestimate)
		assert.Equal(t, "412000", resp.Zestimate.String())
		require.NotNil(t, resp.AveragePrice)
		assert.Equal(t, "390000", resp.AveragePrice.String(), "falls back to the ZIP average")
		assert.True(t, resp.Prefilled)

		s, _ := store.get("s-1")
		rec, ok := s.Record(valueobject.StepPropertyValue)
		require.True(t, ok)
		assert.False(t, rec.Completed)
		assert.Equal(t, "412000.00", rec.Payload.(model.PropertyValue).Zestimate.String())
		require.Len(t, writer.enqueued, 1)
	})

	t.Run("does not overwrite a completed answer", func(t *testing.T) {
		store := newMockSessionStore()
		seedSession(t, store, "s-1", append(onPropertyValue,
			model.PropertyValue{HomeValue: money.FromInt(350_000)})...)
		uc, writer := newUC(store, &mockValueEstimator{}, &mockZipAverage{})

		resp, err := uc.Execute(context.Background(), dto.ValueEstimateRequest{SessionID: "s-1", Address: "601 E Kennedy Blvd"})

		require.NoError(t, err)
		assert.False(t, resp.Prefilled)
		assert.Empty(t, writer.enqueued)
	})

	t.Run("a failed ZIP average only drops that figure", func(t *testing.T) {
		zips := &mockZipAverage{
			zipFunc: func(_ context.Context, _ string) (decimal.Decimal, error) {
				return decimal.Zero, errUnavailable("zip table")
			},
		}
		uc, _ := newUC(newMockSessionStore(), &mockValueEstimator{}, zips)

		resp, err := uc.Execute(context.Background(), dto.ValueEstimateRequest{Address: "601 E Kennedy Blvd", Zip: "33602"})

		require.NoError(t, err)
		assert.NotNil(t, resp.Zestimate)
		assert.Nil(t, resp.ZipAverage)
		assert.False(t, resp.Prefilled)
	})

	t.Run("a failed valuation fails the lookup", func(t *testing.T) {
		estimator := &mockValueEstimator{
			estimateFunc: func(_ context.Context, _ string) (port.ValueEstimate, error) {
				return port.ValueEstimate{}, errUnavailable("zillow")
			},
		}
		uc, _ := newUC(newMockSessionStore(), estimator, &mockZipAverage{})

		_, err := uc.Execute(context.Background(), dto.ValueEstimateRequest{Address: "601 E Kennedy Blvd"})

		assert.True(t, port.IsProviderError(err))
	})
}

func TestEstimateTax_Execute(t *testing.T) {
	uc := usecase.NewEstimateTaxUseCase(&mockTaxEstimator{}, observability.NopMetrics())

	t.Run("applies the homestead exemption", func(t *testing.T) {
		resp, err := uc.Execute(context.Background(), dto.TaxEstimateRequest{
			Value: decimal.NewFromInt(400_000), Homestead: true,
		})

		require.NoError(t, err)
		testutil.AssertDecimal(t, "7175", resp.AnnualTax)
	})

	t.Run("requires a positive value", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), dto.TaxEstimateRequest{})

		var verr *model.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "value")
	})
}
