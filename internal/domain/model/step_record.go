package model

import (
	"time"

	"github.com/ctateo21/homelead/internal/domain/valueobject"
)

// StepRecord is one stored answer. Records are upserted by session and step
// name; Position is the step's first-visit order and never changes after the
// first insert.
type StepRecord struct {
	UpdatedAt   time.Time
	Payload     StepPayload
	Name        valueobject.StepName
	Position    int
	Completed   bool
	PendingSync bool
}

// Warning is a non-blocking notice shown alongside the wizard. A positive
// DismissAfter asks the client to hide it automatically.
type Warning struct {
	Code         string        `json:"code"`
	Message      string        `json:"message"`
	Field        string        `json:"field,omitempty"`
	DismissAfter time.Duration `json:"dismissAfter,omitempty"`
}

const (
	WarningDownPaymentBelowMinimum = "down-payment-below-minimum"
	WarningCashOutClamped          = "cash-out-clamped"
	WarningClosingCostAssistance   = "closing-cost-assistance-clamped"
	WarningPersistenceFailed       = "persistence-failed"
)
