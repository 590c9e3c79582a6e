package usecase

import (
	"context"
	"fmt"

	"github.com/ctateo21/homelead/internal/application/dto"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/service"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
)

// GetSessionUseCase retrieves a session with its answers and cursor.
type GetSessionUseCase struct {
	store port.SessionStore
	seq   *service.Sequencer
}

func NewGetSessionUseCase(store port.SessionStore, seq *service.Sequencer) *GetSessionUseCase {
	return &GetSessionUseCase{store: store, seq: seq}
}

func (uc *GetSessionUseCase) Execute(ctx context.Context, req dto.GetSessionRequest) (dto.SessionResponse, error) {
	session, err := uc.store.Load(ctx, req.SessionID)
	if err != nil {
		return dto.SessionResponse{}, fmt.Errorf("load session: %w", err)
	}
	if session.IsNew() {
		return dto.SessionResponse{}, fmt.Errorf("%w: %s", valueobject.ErrSessionNotFound, req.SessionID)
	}
	return toSessionResponse(session, uc.seq)
}
