package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ctateo21/homelead/internal/application/dto"
	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/service"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
)

// GoBackUseCase moves the session cursor to the previous step. Answers are
// kept; only the cursor and the visit history change.
type GoBackUseCase struct {
	store  port.SessionStore
	seq    *service.Sequencer
	logger *slog.Logger
}

// NewGoBackUseCase wires dependencies.
func NewGoBackUseCase(store port.SessionStore, seq *service.Sequencer, logger *slog.Logger) *GoBackUseCase {
	return &GoBackUseCase{store: store, seq: seq, logger: logger}
}

// Execute moves the cursor back one step.
func (uc *GoBackUseCase) Execute(ctx context.Context, req dto.GoBackRequest) (dto.SessionResponse, error) {
	now := time.Now().UTC()

	session, err := uc.store.Update(ctx, req.SessionID, func(s model.WizardSession) (model.WizardSession, error) {
		if s.IsNew() {
			return s, fmt.Errorf("%w: %s", valueobject.ErrSessionNotFound, req.SessionID)
		}
		prev, ok := uc.seq.PreviousStep(s.CurrentStep(), s.Answers(), s.History())
		if !ok {
			return s, valueobject.ErrNoPreviousStep
		}
		return s.GoBack(prev, now)
	})
	if err != nil {
		return dto.SessionResponse{}, fmt.Errorf("go back: %w", err)
	}

	uc.logger.InfoContext(ctx, "step back",
		"session_id", session.ID(), "current_step", session.CurrentStep().String())

	return toSessionResponse(session, uc.seq)
}
