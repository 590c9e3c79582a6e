package event

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ctateo21/homelead/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const aggregateWizardSession = "WizardSession"

// Event type names. The lead forwarder subscribes to TypeSessionCompleted.
const (
	TypeStepCompleted     = "wizard.step.completed"
	TypeStepDrafted       = "wizard.step.drafted"
	TypeSessionCompleted  = "wizard.session.completed"
	TypeCashOutClamped    = "wizard.cashout.clamped"
	TypePersistenceFailed = "wizard.persistence.failed"
)

// ---------------------------------------------------------------------------
// Step events
// ---------------------------------------------------------------------------

// StepCompleted is raised when a step passes validation and is recorded.
type StepCompleted struct {
	events.BaseEvent
	ServiceType string `json:"service_type"`
	Step        string `json:"step"`
	NextStep    string `json:"next_step"`
	Resubmitted bool   `json:"resubmitted"`
}

func NewStepCompleted(sessionID, serviceType, step, next string, resubmitted bool, now time.Time) StepCompleted {
	return StepCompleted{
		BaseEvent:   events.NewBaseEvent(TypeStepCompleted, sessionID, aggregateWizardSession, now),
		ServiceType: serviceType,
		Step:        step,
		NextStep:    next,
		Resubmitted: resubmitted,
	}
}

// StepDrafted is raised when a partial answer is saved without advancing.
type StepDrafted struct {
	events.BaseEvent
	ServiceType string `json:"service_type"`
	Step        string `json:"step"`
}

func NewStepDrafted(sessionID, serviceType, step string, now time.Time) StepDrafted {
	return StepDrafted{
		BaseEvent:   events.NewBaseEvent(TypeStepDrafted, sessionID, aggregateWizardSession, now),
		ServiceType: serviceType,
		Step:        step,
	}
}

// ---------------------------------------------------------------------------
// Session events
// ---------------------------------------------------------------------------

// Contact is the lead's contact block as forwarded to CRMs.
type Contact struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Consent   bool   `json:"consent"`
}

// SessionCompleted is raised once per session when the terminal step is
// reached. It carries the full lead so consumers need no read-back.
type SessionCompleted struct {
	events.BaseEvent
	ServiceType string                     `json:"service_type"`
	Contact     Contact                    `json:"contact"`
	Answers     map[string]json.RawMessage `json:"answers"`
	Profile     json.RawMessage            `json:"profile,omitempty"`
}

func NewSessionCompleted(
	sessionID, serviceType string,
	contact Contact,
	answers map[string]json.RawMessage,
	profile json.RawMessage,
	now time.Time,
) SessionCompleted {
	return SessionCompleted{
		BaseEvent:   events.NewBaseEvent(TypeSessionCompleted, sessionID, aggregateWizardSession, now),
		ServiceType: serviceType,
		Contact:     contact,
		Answers:     answers,
		Profile:     profile,
	}
}

// CashOutClamped is raised when a requested cash-out exceeds the 80% LTV
// ceiling and is reduced to the maximum allowed.
type CashOutClamped struct {
	events.BaseEvent
	Requested decimal.Decimal `json:"requested"`
	Allowed   decimal.Decimal `json:"allowed"`
}

func NewCashOutClamped(sessionID string, requested, allowed decimal.Decimal, now time.Time) CashOutClamped {
	return CashOutClamped{
		BaseEvent: events.NewBaseEvent(TypeCashOutClamped, sessionID, aggregateWizardSession, now),
		Requested: requested,
		Allowed:   allowed,
	}
}

// PersistenceFailed is raised when the step writer exhausts its retries.
type PersistenceFailed struct {
	events.BaseEvent
	Step     string `json:"step"`
	Attempts int    `json:"attempts"`
	Reason   string `json:"reason"`
}

func NewPersistenceFailed(sessionID, step string, attempts int, reason string, now time.Time) PersistenceFailed {
	return PersistenceFailed{
		BaseEvent: events.NewBaseEvent(TypePersistenceFailed, sessionID, aggregateWizardSession, now),
		Step:      step,
		Attempts:  attempts,
		Reason:    reason,
	}
}
