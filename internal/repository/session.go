package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/popugame-backend/internal/apperror"
	"github.com/rocketscienceinc/popugame-backend/internal/entity"
)

const sessionKeyPrefix = "popugame:session:"

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	Update(ctx context.Context, session *entity.Session) error
	GetByCode(ctx context.Context, code string) (*entity.Session, error)
	DeleteByCode(ctx context.Context, code string) error
}

type dbSession struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) SessionRepository {
	return &dbSession{
		client: client,
	}
}

// Create stores a new session; the code must not be taken.
func (that *dbSession) Create(ctx context.Context, session *entity.Session) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	ok, err := that.client.SetNX(ctx, sessionKeyPrefix+session.Code, sessionJSON, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: code %s already taken", apperror.ErrConflict, session.Code)
	}

	return nil
}

// Update persists a mutated session. The stored state_version must be below
// the new one; a stale write or a concurrent change aborts with ErrConflict.
func (that *dbSession) Update(ctx context.Context, session *entity.Session) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	sessionKey := sessionKeyPrefix + session.Code

	err = that.client.Watch(ctx, func(tx *redis.Tx) error {
		response, err := tx.Get(ctx, sessionKey).Result()
		if errors.Is(err, redis.Nil) {
			return apperror.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}

		var stored entity.Session
		if err = json.Unmarshal([]byte(response), &stored); err != nil {
			return fmt.Errorf("failed to unmarshal session: %w", err)
		}

		if stored.StateVersion >= session.StateVersion {
			return apperror.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, sessionKey, sessionJSON, 0)
			return nil
		})

		return err
	}, sessionKey)

	if errors.Is(err, redis.TxFailedErr) {
		return apperror.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

func (that *dbSession) GetByCode(ctx context.Context, code string) (*entity.Session, error) {
	response, err := that.client.Get(ctx, sessionKeyPrefix+code).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by code: %w", err)
	}

	var existingSession entity.Session
	if err = json.Unmarshal([]byte(response), &existingSession); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &existingSession, nil
}

func (that *dbSession) DeleteByCode(ctx context.Context, code string) error {
	err := that.client.Del(ctx, sessionKeyPrefix+code).Err()
	if err != nil {
		return fmt.Errorf("failed to delete session by code: %w", err)
	}

	return nil
}
