package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/popugame-backend/internal/entity"
	"github.com/rocketscienceinc/popugame-backend/internal/popugame"
)

// GameUseCase is the transport-facing surface of the game core.
type GameUseCase interface {
	CreateGame(ctx context.Context, identity, displayName string) (*entity.Session, error)
	JoinGame(ctx context.Context, code, identity, displayName string) (popugame.Player, *entity.Session, error)
	MakeMove(ctx context.Context, code, identity string, row, col int) (*entity.Session, error)
	ConcedeGame(ctx context.Context, code, identity string) (*entity.Session, error)
	GetState(ctx context.Context, code string) (*entity.Session, error)

	Subscribe(ctx context.Context, code string, sinceVersion int64) (<-chan *entity.Session, func(), error)

	SessionElos(ctx context.Context, session *entity.Session) (*int, *int)
}

type gameplayService interface {
	Create(ctx context.Context, identity, displayName string) (*entity.Session, error)
	Join(ctx context.Context, code, identity, displayName string) (popugame.Player, *entity.Session, error)
	Move(ctx context.Context, code, identity string, row, col int) (*entity.Session, error)
	Concede(ctx context.Context, code, identity string) (*entity.Session, error)
	State(ctx context.Context, code string) (*entity.Session, error)
}

type streamService interface {
	Subscribe(ctx context.Context, code string, sinceVersion int64) (<-chan *entity.Session, func(), error)
}

type ratingService interface {
	GetElo(ctx context.Context, identity string) (int, error)
}

type gameUseCase struct {
	logger *slog.Logger

	gameplayService gameplayService
	streamService   streamService
	ratingService   ratingService
}

func NewGameUseCase(logger *slog.Logger, gameplay gameplayService, stream streamService, rating ratingService) GameUseCase {
	return &gameUseCase{
		logger: logger,

		gameplayService: gameplay,
		streamService:   stream,
		ratingService:   rating,
	}
}

func (that *gameUseCase) CreateGame(ctx context.Context, identity, displayName string) (*entity.Session, error) {
	session, err := that.gameplayService.Create(ctx, identity, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return session, nil
}

func (that *gameUseCase) JoinGame(ctx context.Context, code, identity, displayName string) (popugame.Player, *entity.Session, error) {
	slot, session, err := that.gameplayService.Join(ctx, code, identity, displayName)
	if err != nil {
		return popugame.NoPlayer, nil, fmt.Errorf("failed to join game: %w", err)
	}

	return slot, session, nil
}

func (that *gameUseCase) MakeMove(ctx context.Context, code, identity string, row, col int) (*entity.Session, error) {
	session, err := that.gameplayService.Move(ctx, code, identity, row, col)
	if err != nil {
		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	return session, nil
}

func (that *gameUseCase) ConcedeGame(ctx context.Context, code, identity string) (*entity.Session, error) {
	session, err := that.gameplayService.Concede(ctx, code, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to concede game: %w", err)
	}

	return session, nil
}

func (that *gameUseCase) GetState(ctx context.Context, code string) (*entity.Session, error) {
	session, err := that.gameplayService.State(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get game state: %w", err)
	}

	return session, nil
}

func (that *gameUseCase) Subscribe(ctx context.Context, code string, sinceVersion int64) (<-chan *entity.Session, func(), error) {
	code, err := entity.NormalizeCode(code)
	if err != nil {
		return nil, nil, err
	}

	// Read through the gameplay path first: a finished session that missed
	// its rating resolution is finalized here, so a stream-only client sees
	// the rated state in its catch-up snapshot.
	if _, err = that.gameplayService.State(ctx, code); err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	updates, unsubscribe, err := that.streamService.Subscribe(ctx, code, sinceVersion)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	return updates, unsubscribe, nil
}

// SessionElos looks up current ratings for both seats; anonymous and
// unbound seats yield nil. Lookup failures degrade to nil rather than
// failing the request.
func (that *gameUseCase) SessionElos(ctx context.Context, session *entity.Session) (*int, *int) {
	elos := [2]*int{}

	for i, slot := range session.Players {
		if slot == nil || slot.IsAnonymous() {
			continue
		}

		elo, err := that.ratingService.GetElo(ctx, slot.Identity)
		if err != nil {
			that.logger.Warn("failed to get rating", "identity", slot.Identity, "error", err)
			continue
		}
		elos[i] = &elo
	}

	return elos[0], elos[1]
}
