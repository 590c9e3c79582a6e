package usecase

import (
	"github.com/ctateo21/homelead/internal/application/dto"
	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/service"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
)

func toSessionResponse(s model.WizardSession, seq *service.Sequencer) (dto.SessionResponse, error) {
	answers := s.Answers()

	steps := make([]dto.StepResponse, 0, len(s.Records()))
	for _, r := range s.Records() {
		data, err := model.EncodePayload(r.Payload)
		if err != nil {
			return dto.SessionResponse{}, err
		}
		steps = append(steps, dto.StepResponse{
			Name:        r.Name.String(),
			Position:    r.Position,
			Completed:   r.Completed,
			PendingSync: r.PendingSync,
			Data:        data,
			UpdatedAt:   r.UpdatedAt,
		})
	}

	resp := dto.SessionResponse{
		SessionID:   s.ID(),
		ServiceType: s.ServiceType().String(),
		Status:      s.Status().String(),
		CurrentStep: s.CurrentStep().String(),
		History:     stepNames(s.History()),
		Path:        stepNames(seq.Path(answers)),
		IncomeQueue: stepNames(service.BuildIncomeQueue(answers.IncomeSelection())),
		Steps:       steps,
		Warnings:    s.Warnings(),
		CreatedAt:   s.CreatedAt(),
		UpdatedAt:   s.UpdatedAt(),
	}
	if !s.IsCompleted() {
		if prev, ok := seq.PreviousStep(s.CurrentStep(), answers, s.History()); ok {
			resp.PreviousStep = prev.String()
			resp.CanGoBack = true
		}
	}
	return resp, nil
}

func stepNames(steps []valueobject.StepName) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.String()
	}
	return out
}
