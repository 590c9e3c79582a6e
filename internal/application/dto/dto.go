package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// SubmitStepRequest carries a completed answer for one step.
type SubmitStepRequest struct {
	SessionID string          `json:"sessionId"`
	Step      string          `json:"step"`
	Payload   json.RawMessage `json:"payload"`
}

// SaveDraftRequest carries a partial answer that does not advance the wizard.
type SaveDraftRequest struct {
	SessionID string          `json:"sessionId"`
	Step      string          `json:"step"`
	Payload   json.RawMessage `json:"payload"`
}

// GoBackRequest identifies the session whose cursor moves back one step.
type GoBackRequest struct {
	SessionID string `json:"sessionId"`
}

// GetSessionRequest identifies a session to retrieve.
type GetSessionRequest struct {
	SessionID string `json:"sessionId"`
}

// ComputeProfileRequest identifies the session whose loan profile is computed.
type ComputeProfileRequest struct {
	SessionID       string `json:"sessionId"`
	IncludeSchedule bool   `json:"includeSchedule"`
}

// QuoteRequest computes a profile from answers that belong to no session.
// Answers maps step names to payloads.
type QuoteRequest struct {
	Answers         map[string]json.RawMessage `json:"answers"`
	IncludeSchedule bool                       `json:"includeSchedule"`
}

// AddressLookupRequest carries the free text typed into the address field.
type AddressLookupRequest struct {
	SessionID string `json:"sessionId"`
	Query     string `json:"q"`
}

// ValueEstimateRequest asks for an automated valuation and the ZIP average.
type ValueEstimateRequest struct {
	SessionID string `json:"sessionId"`
	Address   string `json:"address"`
	Zip       string `json:"zip"`
}

// TaxEstimateRequest asks for the annual property tax on a home.
type TaxEstimateRequest struct {
	Address   string          `json:"address"`
	Value     decimal.Decimal `json:"value"`
	Homestead bool            `json:"homestead"`
}

// VerifyRequest runs one verification provider for a session.
type VerifyRequest struct {
	SessionID string `json:"sessionId"`
	Provider  string `json:"provider"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// StepResponse is the external representation of one recorded answer.
type StepResponse struct {
	Name        string          `json:"name"`
	Position    int             `json:"position"`
	Completed   bool            `json:"completed"`
	PendingSync bool            `json:"pendingSync,omitempty"`
	Data        json.RawMessage `json:"data"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// SessionResponse is the external representation of a wizard session.
type SessionResponse struct {
	SessionID    string          `json:"sessionId"`
	ServiceType  string          `json:"serviceType"`
	Status       string          `json:"status"`
	CurrentStep  string          `json:"currentStep"`
	PreviousStep string          `json:"previousStep,omitempty"`
	History      []string        `json:"history"`
	Path         []string        `json:"path"`
	IncomeQueue  []string        `json:"incomeQueue,omitempty"`
	Steps        []StepResponse  `json:"steps"`
	Warnings     []model.Warning `json:"warnings,omitempty"`
	CanGoBack    bool            `json:"canGoBack"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ProfileResponse is a computed loan profile, optionally with its
// amortization schedule.
type ProfileResponse struct {
	SessionID string `json:"sessionId,omitempty"`
	model.LoanProfile
	Schedule []model.AmortizationEntry `json:"schedule,omitempty"`
}

// AddressLookupResponse lists geocoder candidates. Stale is set when a newer
// lookup for the same session started before this one finished; clients
// discard stale responses.
type AddressLookupResponse struct {
	Matches []port.AddressMatch `json:"matches"`
	Stale   bool                `json:"stale"`
}

// ValueEstimateResponse carries the valuation figures shown on the
// property-value step.
type ValueEstimateResponse struct {
	Zestimate    *decimal.Decimal `json:"zestimate,omitempty"`
	AveragePrice *decimal.Decimal `json:"averagePrice,omitempty"`
	ZipAverage   *decimal.Decimal `json:"zipAverage,omitempty"`
	Prefilled    bool             `json:"prefilled"`
	Stale        bool             `json:"stale"`
}

// TaxEstimateResponse is an annual property tax and its monthly share.
type TaxEstimateResponse struct {
	AnnualTax  decimal.Decimal `json:"annualTax"`
	MonthlyTax decimal.Decimal `json:"monthlyTax"`
}

// VerificationResponse is the outcome of a provider check. Liabilities is
// only set for plaid.
type VerificationResponse struct {
	Provider    string                  `json:"provider"`
	Verified    bool                    `json:"verified"`
	Skipped     bool                    `json:"skipped"`
	Amount      *decimal.Decimal        `json:"amount,omitempty"`
	Liabilities *port.LiabilitiesReport `json:"liabilities,omitempty"`
	Prefilled   bool                    `json:"prefilled"`
}
