package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/ctateo21/homelead/internal/domain/event"
	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/observability"
)

// PersistenceFeedbackUseCase reflects background write outcomes back onto
// the in-memory session.
type PersistenceFeedbackUseCase struct {
	store     port.SessionStore
	publisher port.EventPublisher
	metrics   *observability.WizardMetrics
	logger    *slog.Logger
}

// NewPersistenceFeedbackUseCase wires dependencies.
func NewPersistenceFeedbackUseCase(
	store port.SessionStore,
	publisher port.EventPublisher,
	metrics *observability.WizardMetrics,
	logger *slog.Logger,
) *PersistenceFeedbackUseCase {
	return &PersistenceFeedbackUseCase{store: store, publisher: publisher, metrics: metrics, logger: logger}
}

// Failed marks the step pending sync and raises PersistenceFailed. The
// session keeps working from memory.
func (uc *PersistenceFeedbackUseCase) Failed(ctx context.Context, row port.StoredStep, attempts int, cause error) {
	now := time.Now().UTC()
	uc.metrics.PersistenceFailed(ctx)
	uc.logger.WarnContext(ctx, "step write failed",
		"session_id", row.SessionID,
		"step", row.StepName,
		"attempts", attempts,
		"error", cause,
	)

	step, err := valueobject.NewStepName(row.StepName)
	if err != nil {
		return
	}
	if _, err := uc.store.Update(ctx, row.SessionID, func(s model.WizardSession) (model.WizardSession, error) {
		return s.MarkPendingSync(step, now), nil
	}); err != nil {
		uc.logger.WarnContext(ctx, "mark pending sync", "session_id", row.SessionID, "error", err)
	}

	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	publish(ctx, uc.publisher, uc.logger, []event.DomainEvent{
		event.NewPersistenceFailed(row.SessionID, row.StepName, attempts, reason, now),
	})
}

// Synced clears the pending flag once the write landed, unless a newer
// answer for the step is still on its way.
func (uc *PersistenceFeedbackUseCase) Synced(ctx context.Context, row port.StoredStep) {
	step, err := valueobject.NewStepName(row.StepName)
	if err != nil {
		return
	}
	if _, err := uc.store.Update(ctx, row.SessionID, func(s model.WizardSession) (model.WizardSession, error) {
		rec, ok := s.Record(step)
		if !ok || rec.UpdatedAt.After(row.UpdatedAt) {
			return s, nil
		}
		return s.MarkSynced(step), nil
	}); err != nil {
		uc.logger.DebugContext(ctx, "mark synced", "session_id", row.SessionID, "error", err)
	}
}
