package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ctateo21/homelead/internal/application/dto"
	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/service"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/observability"
)

// ComputeProfileUseCase derives the loan profile for a mortgage session.
// Profiles are recomputed on every call and never stored.
type ComputeProfileUseCase struct {
	store   port.SessionStore
	calc    *service.Calculator
	metrics *observability.WizardMetrics
}

// NewComputeProfileUseCase wires dependencies.
func NewComputeProfileUseCase(
	store port.SessionStore,
	calc *service.Calculator,
	metrics *observability.WizardMetrics,
) *ComputeProfileUseCase {
	return &ComputeProfileUseCase{store: store, calc: calc, metrics: metrics}
}

// Execute computes the profile from the session's answers, drafts included,
// so figures update while the borrower types.
func (uc *ComputeProfileUseCase) Execute(
	ctx context.Context,
	req dto.ComputeProfileRequest,
) (dto.ProfileResponse, error) {
	session, err := uc.store.Load(ctx, req.SessionID)
	if err != nil {
		return dto.ProfileResponse{}, fmt.Errorf("load session: %w", err)
	}
	if session.IsNew() {
		return dto.ProfileResponse{}, fmt.Errorf("%w: %s", valueobject.ErrSessionNotFound, req.SessionID)
	}

	resp, err := uc.compute(ctx, session.Answers(), req.IncludeSchedule)
	if err != nil {
		return dto.ProfileResponse{}, err
	}
	resp.SessionID = session.ID()
	return resp, nil
}

// Quote computes a profile from a standalone answers document keyed by step
// name.
func (uc *ComputeProfileUseCase) Quote(ctx context.Context, req dto.QuoteRequest) (dto.ProfileResponse, error) {
	names := make([]string, 0, len(req.Answers))
	for name := range req.Answers {
		names = append(names, name)
	}
	sort.Strings(names)

	payloads := make([]model.StepPayload, 0, len(names))
	for _, name := range names {
		step, err := valueobject.NewStepName(name)
		if err != nil {
			return dto.ProfileResponse{}, err
		}
		p, err := model.DecodePayload(step, req.Answers[name])
		if err != nil {
			return dto.ProfileResponse{}, err
		}
		payloads = append(payloads, p)
	}

	return uc.compute(ctx, model.NewAnswers(payloads...), req.IncludeSchedule)
}

func (uc *ComputeProfileUseCase) compute(ctx context.Context, answers model.Answers, schedule bool) (dto.ProfileResponse, error) {
	start := time.Now()
	profile, err := uc.calc.Profile(answers)
	uc.metrics.CalcDuration(ctx, time.Since(start).Seconds())
	if err != nil {
		return dto.ProfileResponse{}, fmt.Errorf("compute profile: %w", err)
	}

	resp := dto.ProfileResponse{LoanProfile: profile}
	if schedule {
		resp.Schedule = uc.calc.Schedule(profile)
	}
	return resp, nil
}
