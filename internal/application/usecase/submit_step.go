package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ctateo21/homelead/internal/application/dto"
	"github.com/ctateo21/homelead/internal/application/schema"
	"github.com/ctateo21/homelead/internal/domain/event"
	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/service"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/observability"
)

// SubmitStepUseCase validates a completed answer, records it and advances
// the session to the next step.
type SubmitStepUseCase struct {
	store     port.SessionStore
	writer    port.StepWriter
	publisher port.EventPublisher
	validator *schema.Validator
	seq       *service.Sequencer
	calc      *service.Calculator
	metrics   *observability.WizardMetrics
	logger    *slog.Logger
}

// NewSubmitStepUseCase wires dependencies.
func NewSubmitStepUseCase(
	store port.SessionStore,
	writer port.StepWriter,
	publisher port.EventPublisher,
	validator *schema.Validator,
	seq *service.Sequencer,
	calc *service.Calculator,
	metrics *observability.WizardMetrics,
	logger *slog.Logger,
) *SubmitStepUseCase {
	return &SubmitStepUseCase{
		store:     store,
		writer:    writer,
		publisher: publisher,
		validator: validator,
		seq:       seq,
		calc:      calc,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute records the answer and returns the updated session. Submitting
// the same payload twice leaves the session as the first submission did.
func (uc *SubmitStepUseCase) Execute(
	ctx context.Context,
	req dto.SubmitStepRequest,
) (dto.SessionResponse, error) {
	now := time.Now().UTC()

	// 1. Resolve the step.
	step, err := valueobject.NewStepName(req.Step)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	// 2. Gate the raw payload on the step schema.
	if err := uc.validator.Validate(step, req.Payload); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			uc.metrics.ValidationFailed(ctx, step.String())
		}
		return dto.SessionResponse{}, err
	}

	// 3. Decode into the step's payload type.
	payload, err := model.DecodePayload(step, req.Payload)
	if err != nil {
		return dto.SessionResponse{}, fmt.Errorf("decode payload: %w", err)
	}

	// 4. Apply under the session lock.
	var (
		pending []event.DomainEvent
		amended []valueobject.StepName
	)
	session, err := uc.store.Update(ctx, req.SessionID, func(s model.WizardSession) (model.WizardSession, error) {
		next, touched, err := uc.apply(s, payload, now)
		if err != nil {
			return s, err
		}
		pending, amended = next.DomainEvents(), touched
		return next.ClearEvents(), nil
	})
	if err != nil {
		return dto.SessionResponse{}, fmt.Errorf("submit %s: %w", step, err)
	}

	// 5. Queue the writes; storage lags the in-memory session.
	session = enqueueStep(ctx, uc.store, uc.writer, uc.metrics, uc.logger, session, step, now)
	for _, other := range amended {
		session = enqueueStep(ctx, uc.store, uc.writer, uc.metrics, uc.logger, session, other, now)
	}

	// 6. Publish domain events.
	publish(ctx, uc.publisher, uc.logger, pending)

	uc.metrics.StepSubmitted(ctx, session.ServiceType().String(), step.String())
	uc.logger.InfoContext(ctx, "step submitted",
		"session_id", session.ID(),
		"service_type", session.ServiceType().String(),
		"step", step.String(),
		"next_step", session.CurrentStep().String(),
	)

	return toSessionResponse(session, uc.seq)
}

// apply returns the updated session and any other step whose stored answer
// changed as a consequence.
func (uc *SubmitStepUseCase) apply(
	s model.WizardSession,
	p model.StepPayload,
	now time.Time,
) (model.WizardSession, []valueobject.StepName, error) {
	step := p.Step()
	wasCompleted := s.IsCompleted()

	answers := s.Answers().With(p)
	if !uc.seq.InTrack(step, answers) {
		return s, nil, fmt.Errorf("%w: %s", valueobject.ErrStepNotInTrack, step)
	}

	// Cash out is held to the LTV ceiling before it is stored.
	var clamp *model.CashOutResult
	if cod, ok := p.(model.CashOutDetails); ok {
		normalized, res := uc.calc.NormalizeCashOut(answers, cod)
		if res.Clamped {
			p, clamp = normalized, &res
			answers = answers.With(p)
		}
	}

	next := s.CurrentStep()
	if step.Equal(s.CurrentStep()) {
		var err error
		if next, err = uc.seq.NextStep(step, answers); err != nil {
			return s, nil, err
		}
	}

	n, err := s.Submit(p, next, now)
	if err != nil {
		return s, nil, err
	}

	// An edited earlier answer can reshape the path under the cursor.
	if !n.IsCompleted() && !uc.seq.InTrack(n.CurrentStep(), n.Answers()) {
		resume, _ := uc.seq.Resume(n.Answers(), n.IsStepCompleted)
		if n, err = n.GoBack(resume, now); err != nil {
			return s, nil, err
		}
	}

	// A changed value, balance or lien can lower the ceiling under a stored
	// cash-out answer.
	var amended []valueobject.StepName
	if clamp == nil {
		if reclamped, res, ok := uc.reclampCashOut(n, now); ok {
			n, clamp = reclamped, &res
			amended = append(amended, valueobject.StepCashOutDetails)
		}
	}

	if clamp != nil {
		n = n.WithWarning(service.CashOutWarning(*clamp))
		n = n.RecordEvent(event.NewCashOutClamped(n.ID(), clamp.Requested, clamp.Allowed, now))
	}

	if !wasCompleted && n.IsCompleted() {
		lead, err := uc.completedLead(n, now)
		if err != nil {
			return s, nil, err
		}
		n = n.RecordEvent(lead)
	}
	return n, amended, nil
}

// reclampCashOut applies the LTV ceiling to the stored cash-out answer, if
// the session has one on its path. ok is false when nothing changed.
func (uc *SubmitStepUseCase) reclampCashOut(s model.WizardSession, now time.Time) (model.WizardSession, model.CashOutResult, bool) {
	rec, found := s.Record(valueobject.StepCashOutDetails)
	if !found || !uc.seq.InTrack(valueobject.StepCashOutDetails, s.Answers()) {
		return s, model.CashOutResult{}, false
	}
	cod, isCashOut := rec.Payload.(model.CashOutDetails)
	if !isCashOut {
		return s, model.CashOutResult{}, false
	}
	normalized, res := uc.calc.NormalizeCashOut(s.Answers(), cod)
	if !res.Clamped {
		return s, res, false
	}
	return s.Amend(normalized, now), res, true
}

// completedLead assembles the SessionCompleted event forwarded to CRMs.
func (uc *SubmitStepUseCase) completedLead(s model.WizardSession, now time.Time) (event.SessionCompleted, error) {
	answers := make(map[string]json.RawMessage)
	for _, r := range s.Records() {
		if !r.Completed {
			continue
		}
		data, err := model.EncodePayload(r.Payload)
		if err != nil {
			return event.SessionCompleted{}, err
		}
		answers[r.Name.String()] = data
	}

	var profile json.RawMessage
	if s.ServiceType().IsMortgage() {
		p, err := uc.calc.Profile(s.Answers())
		if err != nil {
			return event.SessionCompleted{}, fmt.Errorf("compute profile: %w", err)
		}
		if profile, err = json.Marshal(p); err != nil {
			return event.SessionCompleted{}, fmt.Errorf("encode profile: %w", err)
		}
	}

	c := model.Get[model.ContactInfo](s.Answers())
	contact := event.Contact{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Consent:   c.Consent,
	}
	return event.NewSessionCompleted(s.ID(), s.ServiceType().String(), contact, answers, profile, now), nil
}
