package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ctateo21/homelead/internal/application/dto"
	"github.com/ctateo21/homelead/internal/domain/event"
	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/service"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/observability"
)

// SaveDraftUseCase stores a partial answer without schema gating or
// advancing the cursor.
type SaveDraftUseCase struct {
	store     port.SessionStore
	writer    port.StepWriter
	publisher port.EventPublisher
	seq       *service.Sequencer
	metrics   *observability.WizardMetrics
	logger    *slog.Logger
}

// NewSaveDraftUseCase wires dependencies.
func NewSaveDraftUseCase(
	store port.SessionStore,
	writer port.StepWriter,
	publisher port.EventPublisher,
	seq *service.Sequencer,
	metrics *observability.WizardMetrics,
	logger *slog.Logger,
) *SaveDraftUseCase {
	return &SaveDraftUseCase{
		store:     store,
		writer:    writer,
		publisher: publisher,
		seq:       seq,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute stores the draft and returns the session.
func (uc *SaveDraftUseCase) Execute(
	ctx context.Context,
	req dto.SaveDraftRequest,
) (dto.SessionResponse, error) {
	now := time.Now().UTC()

	// 1. Resolve the step.
	step, err := valueobject.NewStepName(req.Step)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	// 2. Decode; a draft only has to be well-formed JSON.
	payload, err := model.DecodePayload(step, req.Payload)
	if err != nil {
		verr := model.NewValidationError(step.String())
		verr.Add("", "payload is not valid JSON")
		return dto.SessionResponse{}, verr
	}

	// 3. Apply under the session lock.
	var pending []event.DomainEvent
	session, err := uc.store.Update(ctx, req.SessionID, func(s model.WizardSession) (model.WizardSession, error) {
		if rec, ok := s.Record(step); ok && rec.Completed {
			// A draft never downgrades a completed answer.
			return s, nil
		}
		n, err := s.SaveDraft(payload, now)
		if err != nil {
			return s, err
		}
		pending = n.DomainEvents()
		return n.ClearEvents(), nil
	})
	if err != nil {
		return dto.SessionResponse{}, fmt.Errorf("save draft %s: %w", step, err)
	}

	// 4. Queue the write and publish.
	if len(pending) > 0 {
		session = enqueueStep(ctx, uc.store, uc.writer, uc.metrics, uc.logger, session, step, now)
		publish(ctx, uc.publisher, uc.logger, pending)
	}

	return toSessionResponse(session, uc.seq)
}
