package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ctateo21/homelead/internal/domain/event"
	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// CRM lead sinks
// ---------------------------------------------------------------------------

// Sink names as reported in logs and metrics.
const (
	SinkArive        = "arive"
	SinkNetCalcSheet = "netcalcsheet"
	SinkCanopy       = "canopy"
	SinkLog          = "log"
)

// mapFunc turns a completed session into a CRM-specific body.
type mapFunc func(lead event.SessionCompleted) (any, error)

// HTTPLeadSink posts the mapped lead as JSON. With no endpoint it only logs
// the body, which is how the sinks run outside production.
type HTTPLeadSink struct {
	name       string
	endpoint   string
	mapLead    mapFunc
	httpClient *http.Client
	logger     *slog.Logger
}

func newHTTPLeadSink(name, endpoint string, m mapFunc, httpClient *http.Client, logger *slog.Logger) *HTTPLeadSink {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPLeadSink{name: name, endpoint: endpoint, mapLead: m, httpClient: httpClient, logger: logger}
}

// NewAriveSink forwards mortgage leads to the Arive loan origination system.
func NewAriveSink(endpoint string, httpClient *http.Client, logger *slog.Logger) *HTTPLeadSink {
	return newHTTPLeadSink(SinkArive, endpoint, ariveLead, httpClient, logger)
}

// NewNetCalcSheetSink forwards real-estate leads to NetCalcSheet.
func NewNetCalcSheetSink(endpoint string, httpClient *http.Client, logger *slog.Logger) *HTTPLeadSink {
	return newHTTPLeadSink(SinkNetCalcSheet, endpoint, netCalcSheetLead, httpClient, logger)
}

// NewCanopySink forwards insurance leads to Canopy Connect.
func NewCanopySink(endpoint string, httpClient *http.Client, logger *slog.Logger) *HTTPLeadSink {
	return newHTTPLeadSink(SinkCanopy, endpoint, canopyLead, httpClient, logger)
}

// NewLogSink accepts every lead and logs it. It backs tracks with no CRM.
func NewLogSink(logger *slog.Logger) *HTTPLeadSink {
	return newHTTPLeadSink(SinkLog, "", genericLead, nil, logger)
}

func (s *HTTPLeadSink) Name() string { return s.name }

func (s *HTTPLeadSink) Forward(ctx context.Context, lead event.SessionCompleted) error {
	body, err := s.mapLead(lead)
	if err != nil {
		return eris.Wrapf(err, "%s: map lead %s", s.name, lead.AggregateID())
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return eris.Wrapf(err, "%s: encode lead", s.name)
	}

	if s.endpoint == "" {
		s.logger.InfoContext(ctx, "lead sink not configured, logging lead",
			"sink", s.name,
			"session_id", lead.AggregateID(),
			"service_type", lead.ServiceType,
			"body", string(raw),
		)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(raw))
	if err != nil {
		return eris.Wrapf(err, "%s: build request", s.name)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", lead.EventID())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return eris.Wrapf(err, "%s: post lead", s.name)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return eris.Errorf("%s: server returned status %d: %s", s.name, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Payload mapping
// ---------------------------------------------------------------------------

type ariveBorrower struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type ariveLoan struct {
	Purpose       string `json:"loanPurpose"`
	LoanType      string `json:"loanType,omitempty"`
	PropertyValue string `json:"propertyValue,omitempty"`
	LoanAmount    string `json:"baseLoanAmount,omitempty"`
	DownPayment   string `json:"downPayment,omitempty"`
	InterestRate  string `json:"noteRate,omitempty"`
	TermMonths    int    `json:"termMonths,omitempty"`
	DTI           string `json:"dti,omitempty"`
	LTV           string `json:"ltv,omitempty"`
}

type ariveLeadBody struct {
	ExternalID string          `json:"externalId"`
	Source     string          `json:"leadSource"`
	Consent    bool            `json:"tcpaConsent"`
	Borrower   ariveBorrower   `json:"borrower"`
	Loan       ariveLoan       `json:"loan"`
	Address    json.RawMessage `json:"subjectProperty,omitempty"`
}

func ariveLead(lead event.SessionCompleted) (any, error) {
	body := ariveLeadBody{
		ExternalID: lead.AggregateID(),
		Source:     "homelead-wizard",
		Consent:    lead.Contact.Consent,
		Borrower: ariveBorrower{
			FirstName: lead.Contact.FirstName,
			LastName:  lead.Contact.LastName,
			Email:     lead.Contact.Email,
			Phone:     lead.Contact.Phone,
		},
		Loan:    ariveLoan{Purpose: loanPurpose(lead.ServiceType)},
		Address: lead.Answers[valueobject.StepPropertyLocation.String()],
	}

	if len(lead.Profile) > 0 {
		var p model.LoanProfile
		if err := json.Unmarshal(lead.Profile, &p); err != nil {
			return nil, eris.Wrap(err, "decode profile")
		}
		body.Loan.LoanType = p.LoanType
		body.Loan.PropertyValue = p.PurchasePrice.StringFixed(2)
		body.Loan.LoanAmount = p.LoanAmount.StringFixed(2)
		body.Loan.DownPayment = p.DownPayment.StringFixed(2)
		body.Loan.InterestRate = p.InterestRate.String()
		body.Loan.TermMonths = p.TermYears * 12
		body.Loan.DTI = p.DTIRatio.StringFixed(2)
		body.Loan.LTV = p.LTVRatio.StringFixed(2)
	}
	return body, nil
}

func loanPurpose(serviceType string) string {
	switch serviceType {
	case valueobject.ServiceTypeMortgageRefinance.String():
		return "Refinance"
	case valueobject.ServiceTypeMortgageCash.String():
		return "CashOutRefinance"
	default:
		return "Purchase"
	}
}

type netCalcSheetBody struct {
	LeadID    string                     `json:"lead_id"`
	Name      string                     `json:"name"`
	Email     string                     `json:"email"`
	Phone     string                     `json:"phone"`
	OptIn     bool                       `json:"opt_in"`
	Intent    json.RawMessage            `json:"intent,omitempty"`
	Property  json.RawMessage            `json:"property,omitempty"`
	Value     json.RawMessage            `json:"value,omitempty"`
	Timeline  json.RawMessage            `json:"timeline,omitempty"`
	Submitted string                     `json:"submitted_at"`
	Extra     map[string]json.RawMessage `json:"answers"`
}

func netCalcSheetLead(lead event.SessionCompleted) (any, error) {
	return netCalcSheetBody{
		LeadID:    lead.AggregateID(),
		Name:      fullName(lead.Contact),
		Email:     lead.Contact.Email,
		Phone:     lead.Contact.Phone,
		OptIn:     lead.Contact.Consent,
		Intent:    lead.Answers[valueobject.StepRealEstateIntent.String()],
		Property:  lead.Answers[valueobject.StepPropertyLocation.String()],
		Value:     lead.Answers[valueobject.StepPropertyValue.String()],
		Timeline:  lead.Answers[valueobject.StepTimeline.String()],
		Submitted: lead.OccurredAt().UTC().Format(time.RFC3339),
		Extra:     lead.Answers,
	}, nil
}

type canopyBody struct {
	Reference string          `json:"reference"`
	Consumer  canopyConsumer  `json:"consumer"`
	Coverage  json.RawMessage `json:"coverage,omitempty"`
	Property  json.RawMessage `json:"property,omitempty"`
	Details   json.RawMessage `json:"propertyDetails,omitempty"`
}

type canopyConsumer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Consent   bool   `json:"consent"`
}

func canopyLead(lead event.SessionCompleted) (any, error) {
	return canopyBody{
		Reference: lead.AggregateID(),
		Consumer:  canopyConsumer(lead.Contact),
		Coverage:  lead.Answers[valueobject.StepInsuranceType.String()],
		Property:  lead.Answers[valueobject.StepPropertyLocation.String()],
		Details:   lead.Answers[valueobject.StepPropertyDetails.String()],
	}, nil
}

func genericLead(lead event.SessionCompleted) (any, error) {
	return lead, nil
}

func fullName(c event.Contact) string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}
