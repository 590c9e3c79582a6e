package usecase

import (
	"context"
	"log/slog"

	"github.com/ctateo21/homelead/internal/application/dto"
	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/money"
	"github.com/ctateo21/homelead/pkg/observability"
)

// VerifyUseCase runs an income or liabilities verification provider and
// merges the outcome into the matching step's draft.
type VerifyUseCase struct {
	income      port.IncomeVerifier
	liabilities port.LiabilitiesVerifier
	prefill     *DraftPrefiller
	metrics     *observability.WizardMetrics
	logger      *slog.Logger
}

// NewVerifyUseCase wires dependencies.
func NewVerifyUseCase(
	income port.IncomeVerifier,
	liabilities port.LiabilitiesVerifier,
	prefill *DraftPrefiller,
	metrics *observability.WizardMetrics,
	logger *slog.Logger,
) *VerifyUseCase {
	return &VerifyUseCase{
		income:      income,
		liabilities: liabilities,
		prefill:     prefill,
		metrics:     metrics,
		logger:      logger,
	}
}

// Execute calls the provider. A provider failure leaves the step
// interactive: manual entry stays available and nothing is drafted.
func (uc *VerifyUseCase) Execute(ctx context.Context, req dto.VerifyRequest) (dto.VerificationResponse, error) {
	// 1. Validate the request.
	verr := model.NewValidationError("verify")
	provider, err := valueobject.NewProvider(req.Provider)
	if err != nil {
		verr.Add("provider", "is not a supported provider")
	}
	if req.SessionID == "" {
		verr.Add("sessionId", "is required")
	}
	if verr.HasErrors() {
		return dto.VerificationResponse{}, verr
	}

	// 2. Liabilities and assets go through Plaid.
	if provider.Equal(valueobject.ProviderPlaid) {
		return uc.verifyLiabilities(ctx, req.SessionID)
	}

	// 3. Income providers.
	cat, _ := valueobject.IncomeCategoryForProvider(provider)
	result, err := uc.income.VerifyIncome(ctx, provider, req.SessionID)
	uc.metrics.ProviderCall(ctx, provider.String(), err)
	if err != nil {
		uc.logger.WarnContext(ctx, "income verification failed",
			"session_id", req.SessionID, "provider", provider.String(), "error", err)
		return dto.VerificationResponse{}, port.NewProviderError(provider.String(), err)
	}

	resp := dto.VerificationResponse{
		Provider: provider.String(),
		Verified: result.Verified,
		Skipped:  result.Skipped,
	}
	var amount money.Amount
	if result.Verified {
		cents := money.Cents(result.Amount)
		resp.Amount = &cents
		amount = money.NewAmount(cents)
	}
	resp.Prefilled = uc.prefill.Apply(ctx, req.SessionID, cat.Step(), func(a model.Answers) model.StepPayload {
		return withVerification(a, cat, result.Verified, result.Skipped, amount)
	})

	uc.logger.InfoContext(ctx, "income verification",
		"session_id", req.SessionID,
		"provider", provider.String(),
		"verified", result.Verified,
		"skipped", result.Skipped,
	)
	return resp, nil
}

func (uc *VerifyUseCase) verifyLiabilities(ctx context.Context, sessionID string) (dto.VerificationResponse, error) {
	provider := valueobject.ProviderPlaid.String()
	report, err := uc.liabilities.VerifyLiabilitiesAndAssets(ctx, sessionID)
	uc.metrics.ProviderCall(ctx, provider, err)
	if err != nil {
		uc.logger.WarnContext(ctx, "liabilities verification failed", "session_id", sessionID, "error", err)
		return dto.VerificationResponse{}, port.NewProviderError(provider, err)
	}

	prefilled := uc.prefill.Apply(ctx, sessionID, valueobject.StepLiabilities, func(a model.Answers) model.StepPayload {
		l := model.Get[model.Liabilities](a)
		l.Method = "plaid"
		l.Verified = true
		l.TotalMonthlyDebts = money.NewAmount(money.Cents(report.TotalMonthlyDebts))
		return l
	})

	return dto.VerificationResponse{
		Provider:    provider,
		Verified:    true,
		Liabilities: &report,
		Prefilled:   prefilled,
	}, nil
}

// withVerification copies the provider outcome onto the category's step
// payload, keeping any manual figures already entered.
func withVerification(a model.Answers, cat valueobject.IncomeCategory, verified, skipped bool, amount money.Amount) model.StepPayload {
	v := model.Verification{Verified: verified, VerifiedMonthlyIncome: amount}
	switch cat {
	case valueobject.IncomeSelfEmployed:
		p := model.Get[model.TaxStatus](a)
		p.Verification, p.SkipTaxStatus = v, skipped
		return p
	case valueobject.IncomeRetired:
		p := model.Get[model.RetirementIncome](a)
		p.Verification, p.SkipSSA = v, skipped
		return p
	case valueobject.IncomeDisability:
		p := model.Get[model.DisabilityType](a)
		p.Verification, p.SkipVA = v, skipped
		return p
	default:
		p := model.Get[model.Truv](a)
		p.Verification, p.SkipTruv = v, skipped
		return p
	}
}
