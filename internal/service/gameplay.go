package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/popugame-backend/internal/apperror"
	"github.com/rocketscienceinc/popugame-backend/internal/entity"
	"github.com/rocketscienceinc/popugame-backend/internal/pkg"
	"github.com/rocketscienceinc/popugame-backend/internal/popugame"
)

// GameplayService arbitrates all session mutations. Mutations sharing a
// game code are serialized through a keyed mutex; different codes proceed
// in parallel.
type GameplayService interface {
	Create(ctx context.Context, identity, displayName string) (*entity.Session, error)
	Join(ctx context.Context, code, identity, displayName string) (popugame.Player, *entity.Session, error)
	Move(ctx context.Context, code, identity string, row, col int) (*entity.Session, error)
	Concede(ctx context.Context, code, identity string) (*entity.Session, error)
	State(ctx context.Context, code string) (*entity.Session, error)
}

type statePublisher interface {
	Publish(session *entity.Session)
}

type gameplayService struct {
	logger *slog.Logger

	sessionService SessionService
	ratingService  RatingService
	publisher      statePublisher

	codeLocks *pkg.KeyedMutex

	gridSize  int
	turnLimit int
}

func NewGameplayService(logger *slog.Logger, sessionService SessionService, ratingService RatingService, publisher statePublisher, gridSize, turnLimit int) GameplayService {
	return &gameplayService{
		logger: logger,

		sessionService: sessionService,
		ratingService:  ratingService,
		publisher:      publisher,

		codeLocks: pkg.NewKeyedMutex(),

		gridSize:  gridSize,
		turnLimit: turnLimit,
	}
}

func (that *gameplayService) Create(ctx context.Context, identity, displayName string) (*entity.Session, error) {
	host := &entity.PlayerSlot{Identity: identity, Name: displayName}

	session, err := that.sessionService.CreateSession(ctx, host, that.gridSize, that.turnLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.publisher.Publish(session)

	return session, nil
}

// Join binds identity to a free slot, or returns the already-bound slot
// for a returning identity without touching the session.
func (that *gameplayService) Join(ctx context.Context, code, identity, displayName string) (popugame.Player, *entity.Session, error) {
	code, err := entity.NormalizeCode(code)
	if err != nil {
		return popugame.NoPlayer, nil, err
	}

	unlock := that.codeLocks.Lock(code)
	defer unlock()

	session, err := that.sessionService.GetSessionByCode(ctx, code)
	if err != nil {
		return popugame.NoPlayer, nil, err
	}

	if slot, ok := session.SlotOf(identity); ok {
		return slot, session, nil
	}

	if session.Players[1] != nil {
		return popugame.NoPlayer, nil, apperror.ErrSessionFull
	}

	session.Players[1] = &entity.PlayerSlot{Identity: identity, Name: displayName}
	session.Status = entity.StatusActive

	if err = that.persist(ctx, session); err != nil {
		return popugame.NoPlayer, nil, err
	}

	that.publisher.Publish(session)

	return popugame.PlayerOne, session, nil
}

func (that *gameplayService) Move(ctx context.Context, code, identity string, row, col int) (*entity.Session, error) {
	code, err := entity.NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	unlock := that.codeLocks.Lock(code)
	defer unlock()

	session, err := that.sessionService.GetSessionByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	slot, ok := session.SlotOf(identity)
	if !ok {
		return nil, apperror.ErrNotParticipant
	}

	if err = session.ConfirmActiveState(); err != nil {
		return nil, err
	}

	if slot != session.ActivePlayer {
		return nil, apperror.ErrNotYourTurn
	}

	if err = popugame.ApplyMove(session.Board, slot, row, col); err != nil {
		return nil, err
	}

	session.Turn++
	session.ActivePlayer = slot.Opponent()

	if session.Turn >= session.TurnLimit {
		that.finishByTurnLimit(session)
		that.finalizeRatings(ctx, session)
	}

	if err = that.persist(ctx, session); err != nil {
		return nil, err
	}

	that.publisher.Publish(session)

	return session, nil
}

func (that *gameplayService) Concede(ctx context.Context, code, identity string) (*entity.Session, error) {
	code, err := entity.NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	unlock := that.codeLocks.Lock(code)
	defer unlock()

	session, err := that.sessionService.GetSessionByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	slot, ok := session.SlotOf(identity)
	if !ok {
		return nil, apperror.ErrNotParticipant
	}

	if err = session.ConfirmActiveState(); err != nil {
		return nil, err
	}

	winner := slot.Opponent()
	session.Finish(&winner, entity.EndedReasonConcede)
	that.finalizeRatings(ctx, session)

	if err = that.persist(ctx, session); err != nil {
		return nil, err
	}

	that.publisher.Publish(session)

	return session, nil
}

// State returns the current snapshot. Rating resolution for a finished
// session that missed it (a crash between persist and finalize) is caught
// up here.
func (that *gameplayService) State(ctx context.Context, code string) (*entity.Session, error) {
	code, err := entity.NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	session, err := that.sessionService.GetSessionByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if !session.IsFinished() || session.RatingsApplied || !session.IsRated() {
		return session, nil
	}

	unlock := that.codeLocks.Lock(code)
	defer unlock()

	session, err = that.sessionService.GetSessionByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if !session.RatingsApplied {
		that.finalizeRatings(ctx, session)
		if session.RatingsApplied {
			if err = that.persist(ctx, session); err != nil {
				return nil, err
			}
			that.publisher.Publish(session)
		}
	}

	return session, nil
}

func (that *gameplayService) finishByTurnLimit(session *entity.Session) {
	score0, score1 := session.Board.Scores()

	var winner *popugame.Player
	switch {
	case score0 > score1:
		w := popugame.PlayerZero
		winner = &w
	case score1 > score0:
		w := popugame.PlayerOne
		winner = &w
	}

	session.Finish(winner, entity.EndedReasonTurnLimit)
}

// finalizeRatings applies Elo; a rating failure never fails the game
// mutation itself.
func (that *gameplayService) finalizeRatings(ctx context.Context, session *entity.Session) {
	if err := that.ratingService.FinalizeSession(ctx, session); err != nil {
		that.logger.Error("failed to finalize ratings", "code", session.Code, "error", err)
	}
}

// persist bumps the state version and writes the session, retrying a
// detected storage conflict once before surfacing it.
func (that *gameplayService) persist(ctx context.Context, session *entity.Session) error {
	session.StateVersion++

	err := that.sessionService.UpdateSession(ctx, session)
	if errors.Is(err, apperror.ErrConflict) {
		that.logger.Warn("session update conflict, retrying once", "code", session.Code)
		err = that.sessionService.UpdateSession(ctx, session)
	}
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	return nil
}
