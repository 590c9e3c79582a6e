package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ctateo21/homelead/internal/application/dto"
	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/pkg/observability"
)

const providerGeocode = "geocode"

// LookupAddressUseCase resolves typed text into address candidates.
type LookupAddressUseCase struct {
	lookup  port.AddressLookup
	guard   *LookupGuard
	metrics *observability.WizardMetrics
	logger  *slog.Logger
}

// NewLookupAddressUseCase wires dependencies.
func NewLookupAddressUseCase(
	lookup port.AddressLookup,
	guard *LookupGuard,
	metrics *observability.WizardMetrics,
	logger *slog.Logger,
) *LookupAddressUseCase {
	return &LookupAddressUseCase{lookup: lookup, guard: guard, metrics: metrics, logger: logger}
}

// Execute returns the geocoder's candidates for the query.
func (uc *LookupAddressUseCase) Execute(
	ctx context.Context,
	req dto.AddressLookupRequest,
) (dto.AddressLookupResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		verr := model.NewValidationError("address-lookup")
		verr.Add("q", "is required")
		return dto.AddressLookupResponse{}, verr
	}

	token := uc.guard.Begin(req.SessionID, LookupAddress)
	matches, err := uc.lookup.LookupAddress(ctx, query)
	uc.metrics.ProviderCall(ctx, providerGeocode, err)
	fresh := uc.guard.Accept(req.SessionID, LookupAddress, token)
	if err != nil {
		uc.logger.WarnContext(ctx, "address lookup failed", "session_id", req.SessionID, "error", err)
		return dto.AddressLookupResponse{}, port.NewProviderError(providerGeocode, err)
	}

	if matches == nil {
		matches = []port.AddressMatch{}
	}
	return dto.AddressLookupResponse{Matches: matches, Stale: !fresh}, nil
}
