package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/popugame-backend/internal/apperror"
	"github.com/rocketscienceinc/popugame-backend/internal/entity"
)

type RatingRepository interface {
	Save(ctx context.Context, rating *entity.Rating) error
	Find(ctx context.Context, identity string) (*entity.Rating, error)
}

type ratingRepository struct {
	conn *sql.DB
}

func NewRatingRepository(conn *sql.DB) RatingRepository {
	return &ratingRepository{
		conn: conn,
	}
}

func (that *ratingRepository) Save(ctx context.Context, rating *entity.Rating) error {
	query := `INSERT INTO ratings (identity, elo, games_played, wins, losses, draws)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (identity) DO UPDATE SET
			elo = excluded.elo,
			games_played = excluded.games_played,
			wins = excluded.wins,
			losses = excluded.losses,
			draws = excluded.draws`

	_, err := that.conn.ExecContext(ctx, query,
		rating.Identity, rating.Elo, rating.GamesPlayed, rating.Wins, rating.Losses, rating.Draws)
	if err != nil {
		return fmt.Errorf("can't save rating: %w", err)
	}

	return nil
}

func (that *ratingRepository) Find(ctx context.Context, identity string) (*entity.Rating, error) {
	query := `SELECT identity, elo, games_played, wins, losses, draws FROM ratings WHERE identity = ?`

	var rating entity.Rating

	err := that.conn.QueryRowContext(ctx, query, identity).
		Scan(&rating.Identity, &rating.Elo, &rating.GamesPlayed, &rating.Wins, &rating.Losses, &rating.Draws)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find rating: %w", err)
	}

	return &rating, nil
}
