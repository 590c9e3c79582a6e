package service

import (
	"fmt"

	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
)

// RestoreSession rebuilds a session from its stored rows. The cursor and the
// visit history are derived from the completed answers, so a reloaded
// session resumes on the first unanswered step of its path.
func RestoreSession(sessionID string, rows []port.StoredStep, seq *Sequencer) (model.WizardSession, error) {
	if len(rows) == 0 {
		return model.WizardSession{}, fmt.Errorf("%w: %s", valueobject.ErrSessionNotFound, sessionID)
	}

	records := make([]model.StepRecord, 0, len(rows))
	createdAt, updatedAt := rows[0].UpdatedAt, rows[0].UpdatedAt
	for _, row := range rows {
		step, err := valueobject.NewStepName(row.StepName)
		if err != nil {
			return model.WizardSession{}, fmt.Errorf("restore %s: %w", sessionID, err)
		}
		payload, err := model.DecodePayload(step, row.ResponseData)
		if err != nil {
			return model.WizardSession{}, fmt.Errorf("restore %s: %w", sessionID, err)
		}
		records = append(records, model.StepRecord{
			Name:      step,
			Payload:   payload,
			Position:  row.Position,
			Completed: row.IsCompleted,
			UpdatedAt: row.UpdatedAt,
		})
		if row.UpdatedAt.Before(createdAt) {
			createdAt = row.UpdatedAt
		}
		if row.UpdatedAt.After(updatedAt) {
			updatedAt = row.UpdatedAt
		}
	}

	completed := make(map[valueobject.StepName]bool, len(records))
	payloads := make([]model.StepPayload, 0, len(records))
	for _, r := range records {
		payloads = append(payloads, r.Payload)
		completed[r.Name] = r.Completed
	}
	current, history := seq.Resume(model.NewAnswers(payloads...), func(s valueobject.StepName) bool {
		return completed[s]
	})

	return model.ReconstructWizardSession(sessionID, records, current, history, createdAt, updatedAt), nil
}

// ToStoredStep converts a session record into its persisted form.
func ToStoredStep(s model.WizardSession, step valueobject.StepName) (port.StoredStep, error) {
	rec, ok := s.Record(step)
	if !ok {
		return port.StoredStep{}, fmt.Errorf("%w: %s has no record for %s", valueobject.ErrUnknownStep, s.ID(), step)
	}
	data, err := model.EncodePayload(rec.Payload)
	if err != nil {
		return port.StoredStep{}, err
	}
	return port.StoredStep{
		SessionID:    s.ID(),
		ServiceType:  s.ServiceType().String(),
		StepName:     step.String(),
		ResponseData: data,
		Position:     rec.Position,
		IsCompleted:  rec.Completed,
		UpdatedAt:    rec.UpdatedAt,
	}, nil
}
