package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/observability"
)

var errSkipPrefill = errors.New("prefill not applicable")

// DraftPrefiller merges provider results into a step's draft so the form
// opens with the fetched figures. Completed answers are never overwritten.
type DraftPrefiller struct {
	store   port.SessionStore
	writer  port.StepWriter
	metrics *observability.WizardMetrics
	logger  *slog.Logger
}

func NewDraftPrefiller(
	store port.SessionStore,
	writer port.StepWriter,
	metrics *observability.WizardMetrics,
	logger *slog.Logger,
) *DraftPrefiller {
	return &DraftPrefiller{store: store, writer: writer, metrics: metrics, logger: logger}
}

// Apply drafts build's payload onto step and reports whether it did.
func (d *DraftPrefiller) Apply(
	ctx context.Context,
	sessionID string,
	step valueobject.StepName,
	build func(model.Answers) model.StepPayload,
) bool {
	if sessionID == "" {
		return false
	}
	now := time.Now().UTC()

	session, err := d.store.Update(ctx, sessionID, func(s model.WizardSession) (model.WizardSession, error) {
		if s.IsNew() || !s.CanSubmit(step) {
			return s, errSkipPrefill
		}
		if rec, ok := s.Record(step); ok && rec.Completed {
			return s, errSkipPrefill
		}
		n, err := s.SaveDraft(build(s.Answers()), now)
		if err != nil {
			return s, err
		}
		return n.ClearEvents(), nil
	})
	if err != nil {
		if !errors.Is(err, errSkipPrefill) {
			d.logger.WarnContext(ctx, "prefill failed",
				"session_id", sessionID, "step", step.String(), "error", err)
		}
		return false
	}

	enqueueStep(ctx, d.store, d.writer, d.metrics, d.logger, session, step, now)
	return true
}
