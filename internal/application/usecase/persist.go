package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/ctateo21/homelead/internal/domain/event"
	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/service"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/observability"
)

// enqueueStep hands the step's record to the background writer. A write that
// cannot even be queued leaves the in-memory session authoritative and flags
// the record as pending sync; it never fails the caller. Once a write is
// queued, records still pending sync from earlier failures are queued again.
func enqueueStep(
	ctx context.Context,
	store port.SessionStore,
	writer port.StepWriter,
	metrics *observability.WizardMetrics,
	logger *slog.Logger,
	s model.WizardSession,
	step valueobject.StepName,
	now time.Time,
) model.WizardSession {
	row, err := service.ToStoredStep(s, step)
	if err == nil {
		err = writer.Enqueue(ctx, row)
	}
	if err == nil {
		resync(ctx, writer, logger, s, step)
		return s
	}

	metrics.PersistenceFailed(ctx)
	logger.WarnContext(ctx, "step write not queued",
		"session_id", s.ID(), "step", step.String(), "error", err)

	updated, uerr := store.Update(ctx, s.ID(), func(cur model.WizardSession) (model.WizardSession, error) {
		return cur.MarkPendingSync(step, now), nil
	})
	if uerr != nil {
		return s.MarkPendingSync(step, now)
	}
	return updated
}

// resync re-queues every pending-sync record except skip. The records keep
// their flag until the writer reports them synced.
func resync(ctx context.Context, writer port.StepWriter, logger *slog.Logger, s model.WizardSession, skip valueobject.StepName) {
	for _, r := range s.Records() {
		if !r.PendingSync || r.Name.Equal(skip) {
			continue
		}
		row, err := service.ToStoredStep(s, r.Name)
		if err == nil {
			err = writer.Enqueue(ctx, row)
		}
		if err != nil {
			logger.DebugContext(ctx, "pending step not requeued",
				"session_id", s.ID(), "step", r.Name.String(), "error", err)
			return
		}
	}
}

// publish hands events to the publisher. Delivery failures are logged; the
// session state they describe is already committed.
func publish(ctx context.Context, publisher port.EventPublisher, logger *slog.Logger, evts []event.DomainEvent) {
	if len(evts) == 0 {
		return
	}
	if err := publisher.Publish(ctx, evts...); err != nil {
		logger.WarnContext(ctx, "publish events failed", "count", len(evts), "error", err)
	}
}
