package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ctateo21/homelead/internal/application/dto"
	"github.com/ctateo21/homelead/internal/application/usecase"
	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// WizardHandler exposes the wizard use cases over gRPC.
// ---------------------------------------------------------------------------

// WizardHandler implements WizardServiceServer.
type WizardHandler struct {
	UnimplementedWizardServiceServer

	submit  *usecase.SubmitStepUseCase
	draft   *usecase.SaveDraftUseCase
	back    *usecase.GoBackUseCase
	get     *usecase.GetSessionUseCase
	profile *usecase.ComputeProfileUseCase
	verify  *usecase.VerifyUseCase
	logger  *slog.Logger
}

// NewWizardHandler creates a new handler with all use-case dependencies.
func NewWizardHandler(
	submit *usecase.SubmitStepUseCase,
	draft *usecase.SaveDraftUseCase,
	back *usecase.GoBackUseCase,
	get *usecase.GetSessionUseCase,
	profile *usecase.ComputeProfileUseCase,
	verify *usecase.VerifyUseCase,
	logger *slog.Logger,
) *WizardHandler {
	return &WizardHandler{
		submit:  submit,
		draft:   draft,
		back:    back,
		get:     get,
		profile: profile,
		verify:  verify,
		logger:  logger,
	}
}

// SubmitStep records a completed answer and advances the session.
func (h *WizardHandler) SubmitStep(ctx context.Context, req *dto.SubmitStepRequest) (*dto.SessionResponse, error) {
	resp, err := h.submit.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "SubmitStep", err)
	}
	return &resp, nil
}

// SaveDraft stores a partial answer.
func (h *WizardHandler) SaveDraft(ctx context.Context, req *dto.SaveDraftRequest) (*dto.SessionResponse, error) {
	resp, err := h.draft.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "SaveDraft", err)
	}
	return &resp, nil
}

// GoBack moves the cursor to the previous step.
func (h *WizardHandler) GoBack(ctx context.Context, req *dto.GoBackRequest) (*dto.SessionResponse, error) {
	resp, err := h.back.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "GoBack", err)
	}
	return &resp, nil
}

// GetSession returns a session by ID.
func (h *WizardHandler) GetSession(ctx context.Context, req *dto.GetSessionRequest) (*dto.SessionResponse, error) {
	resp, err := h.get.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "GetSession", err)
	}
	return &resp, nil
}

// ComputeProfile returns the loan profile for a mortgage session.
func (h *WizardHandler) ComputeProfile(ctx context.Context, req *dto.ComputeProfileRequest) (*dto.ProfileResponse, error) {
	resp, err := h.profile.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "ComputeProfile", err)
	}
	return &resp, nil
}

// VerifyIncome runs an income or liabilities provider for the session.
func (h *WizardHandler) VerifyIncome(ctx context.Context, req *dto.VerifyRequest) (*dto.VerificationResponse, error) {
	resp, err := h.verify.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "VerifyIncome", err)
	}
	return &resp, nil
}

// toStatus maps use-case errors onto gRPC codes. Validation errors keep
// their full field list in the message.
func (h *WizardHandler) toStatus(ctx context.Context, method string, err error) error {
	code := Code(err)
	if code == codes.Internal {
		h.logger.ErrorContext(ctx, "grpc call failed", "method", method, "error", err)
	}
	return status.Error(code, err.Error())
}

// Code classifies err.
func Code(err error) codes.Code {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return codes.InvalidArgument
	case port.IsProviderError(err):
		return codes.Unavailable
	case errors.Is(err, valueobject.ErrSessionNotFound):
		return codes.NotFound
	case errors.Is(err, valueobject.ErrUnknownStep),
		errors.Is(err, valueobject.ErrStepNotInTrack):
		return codes.InvalidArgument
	case errors.Is(err, valueobject.ErrStepNotReachable),
		errors.Is(err, valueobject.ErrTerminalStep),
		errors.Is(err, valueobject.ErrServiceTypeMismatch),
		errors.Is(err, valueobject.ErrNotMortgageTrack),
		errors.Is(err, valueobject.ErrNoPreviousStep):
		return codes.FailedPrecondition
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}
