package port

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ctateo21/homelead/internal/domain/event"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// StoredStep is the persisted form of one step answer. ResponseData is the
// canonical JSON of the step's payload.
type StoredStep struct {
	UpdatedAt    time.Time
	SessionID    string
	ServiceType  string
	StepName     string
	ResponseData json.RawMessage
	Position     int
	IsCompleted  bool
}

// StepRepository stores step answers. SaveStep upserts by session and step
// name; a write older than the stored row is ignored. LoadSession returns
// every row for the session ordered by position, or an empty slice.
type StepRepository interface {
	SaveStep(ctx context.Context, step StoredStep) (StoredStep, error)
	LoadSession(ctx context.Context, sessionID string) ([]StoredStep, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}
