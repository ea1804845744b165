package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/popugame-backend/internal/apperror"
	"github.com/rocketscienceinc/popugame-backend/internal/entity"
	"github.com/rocketscienceinc/popugame-backend/internal/pkg"
)

const codeAllocationAttempts = 20

// SessionService is the persistence boundary for game sessions.
type SessionService interface {
	CreateSession(ctx context.Context, host *entity.PlayerSlot, gridSize, turnLimit int) (*entity.Session, error)
	GetSessionByCode(ctx context.Context, code string) (*entity.Session, error)
	UpdateSession(ctx context.Context, session *entity.Session) error
	DeleteSession(ctx context.Context, code string) error
}

type sessionRepo interface {
	Create(ctx context.Context, session *entity.Session) error
	Update(ctx context.Context, session *entity.Session) error
	GetByCode(ctx context.Context, code string) (*entity.Session, error)
	DeleteByCode(ctx context.Context, code string) error
}

type sessionService struct {
	sessionRepo sessionRepo
}

func NewSessionService(repo sessionRepo) SessionService {
	return &sessionService{
		sessionRepo: repo,
	}
}

// CreateSession allocates a fresh unique code and stores a waiting session
// with the host bound to slot 0.
func (that *sessionService) CreateSession(ctx context.Context, host *entity.PlayerSlot, gridSize, turnLimit int) (*entity.Session, error) {
	for attempt := 0; attempt < codeAllocationAttempts; attempt++ {
		code, err := pkg.GenerateGameCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate game code: %w", err)
		}

		session := entity.NewSession(code, gridSize, turnLimit, host)
		session.StateVersion = 1

		err = that.sessionRepo.Create(ctx, session)
		if errors.Is(err, apperror.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}

		return session, nil
	}

	return nil, fmt.Errorf("failed to allocate a unique game code after %d attempts", codeAllocationAttempts)
}

func (that *sessionService) GetSessionByCode(ctx context.Context, code string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve session from storage: %w", err)
	}

	return session, nil
}

func (that *sessionService) UpdateSession(ctx context.Context, session *entity.Session) error {
	if err := that.sessionRepo.Update(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

func (that *sessionService) DeleteSession(ctx context.Context, code string) error {
	if err := that.sessionRepo.DeleteByCode(ctx, code); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
