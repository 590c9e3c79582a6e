package port

import (
	"context"

	"github.com/ctateo21/homelead/internal/domain/model"
)

// SessionStore holds the authoritative in-memory copy of each session.
// Load returns a fresh session when nothing is stored for the ID.
// Update applies fn under the session's lock; when fn fails the stored
// session is left unchanged.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (model.WizardSession, error)
	Update(
		ctx context.Context,
		sessionID string,
		fn func(model.WizardSession) (model.WizardSession, error),
	) (model.WizardSession, error)
}

// StepWriter persists step records in the background. Enqueue returns once
// the write is queued, not once it is stored.
type StepWriter interface {
	Enqueue(ctx context.Context, step StoredStep) error
}
