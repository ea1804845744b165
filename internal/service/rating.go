package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rocketscienceinc/popugame-backend/internal/apperror"
	"github.com/rocketscienceinc/popugame-backend/internal/entity"
	"github.com/rocketscienceinc/popugame-backend/internal/popugame"
)

// RatingService resolves Elo outcomes for finished sessions.
type RatingService interface {
	GetElo(ctx context.Context, identity string) (int, error)
	FinalizeSession(ctx context.Context, session *entity.Session) error
}

type ratingRepo interface {
	Save(ctx context.Context, rating *entity.Rating) error
	Find(ctx context.Context, identity string) (*entity.Rating, error)
}

type ratingService struct {
	ratingRepo ratingRepo
	kFactor    float64
	defaultElo int
}

func NewRatingService(repo ratingRepo, kFactor float64, defaultElo int) RatingService {
	return &ratingService{
		ratingRepo: repo,
		kFactor:    kFactor,
		defaultElo: defaultElo,
	}
}

// GetElo returns the stored rating for an identity, bootstrapping the
// default for first-time players.
func (that *ratingService) GetElo(ctx context.Context, identity string) (int, error) {
	rating, err := that.ratingRepo.Find(ctx, identity)
	if errors.Is(err, apperror.ErrNotFound) {
		bootstrap := &entity.Rating{Identity: identity, Elo: that.defaultElo}
		if err = that.ratingRepo.Save(ctx, bootstrap); err != nil {
			return 0, fmt.Errorf("failed to bootstrap rating: %w", err)
		}

		return that.defaultElo, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find rating: %w", err)
	}

	return rating.Elo, nil
}

// FinalizeSession applies the Elo update for a finished rated session and
// records the outcome on the session itself. Guarded by RatingsApplied, so
// calling it again is a no-op.
func (that *ratingService) FinalizeSession(ctx context.Context, session *entity.Session) error {
	if !session.IsFinished() || session.RatingsApplied || !session.IsRated() {
		return nil
	}

	rating0, err := that.findOrDefault(ctx, session.Players[0].Identity)
	if err != nil {
		return err
	}

	rating1, err := that.findOrDefault(ctx, session.Players[1].Identity)
	if err != nil {
		return err
	}

	score0, score1 := actualScores(session.Winner)

	elo0 := float64(rating0.Elo)
	elo1 := float64(rating1.Elo)
	new0 := int(math.Round(elo0 + that.kFactor*(score0-expectedScore(elo0, elo1))))
	new1 := int(math.Round(elo1 + that.kFactor*(score1-expectedScore(elo1, elo0))))

	delta0 := new0 - rating0.Elo
	delta1 := new1 - rating1.Elo

	applyOutcome(rating0, new0, score0)
	applyOutcome(rating1, new1, score1)

	if err = that.ratingRepo.Save(ctx, rating0); err != nil {
		return fmt.Errorf("failed to save rating for player 0: %w", err)
	}

	if err = that.ratingRepo.Save(ctx, rating1); err != nil {
		return fmt.Errorf("failed to save rating for player 1: %w", err)
	}

	session.RatingsApplied = true
	session.EloDeltaP0 = &delta0
	session.EloDeltaP1 = &delta1
	session.EloAfterP0 = &new0
	session.EloAfterP1 = &new1

	return nil
}

func (that *ratingService) findOrDefault(ctx context.Context, identity string) (*entity.Rating, error) {
	rating, err := that.ratingRepo.Find(ctx, identity)
	if errors.Is(err, apperror.ErrNotFound) {
		return &entity.Rating{Identity: identity, Elo: that.defaultElo}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find rating: %w", err)
	}

	return rating, nil
}

// expectedScore is the standard Elo expectation for ra against rb.
func expectedScore(ra, rb float64) float64 {
	return 1.0 / (1.0 + math.Pow(10.0, (rb-ra)/400.0))
}

func actualScores(winner *popugame.Player) (float64, float64) {
	if winner == nil {
		return 0.5, 0.5
	}
	if *winner == popugame.PlayerZero {
		return 1.0, 0.0
	}

	return 0.0, 1.0
}

func applyOutcome(rating *entity.Rating, newElo int, score float64) {
	rating.Elo = newElo
	rating.GamesPlayed++
	switch score {
	case 1.0:
		rating.Wins++
	case 0.0:
		rating.Losses++
	default:
		rating.Draws++
	}
}
