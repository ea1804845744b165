package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rocketscienceinc/popugame-backend/internal/apperror"
	"github.com/rocketscienceinc/popugame-backend/internal/entity"
	"github.com/rocketscienceinc/popugame-backend/internal/repository/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRatingRepo(t *testing.T) RatingRepository {
	t.Helper()

	ctx := context.Background()

	db, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "ratings.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	require.NoError(t, db.Init(ctx))

	return NewRatingRepository(db.Connection)
}

func TestRatingRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Save and find", func(t *testing.T) {
		repo := newRatingRepo(t)

		rating := &entity.Rating{Identity: "user-a", Elo: 1200, GamesPlayed: 3, Wins: 2, Losses: 1}
		require.NoError(t, repo.Save(ctx, rating))

		got, err := repo.Find(ctx, "user-a")
		require.NoError(t, err)
		assert.Equal(t, rating, got)
	})

	t.Run("Save upserts an existing identity", func(t *testing.T) {
		repo := newRatingRepo(t)

		require.NoError(t, repo.Save(ctx, &entity.Rating{Identity: "user-a", Elo: 1200}))
		require.NoError(t, repo.Save(ctx, &entity.Rating{Identity: "user-a", Elo: 1212, GamesPlayed: 1, Wins: 1}))

		got, err := repo.Find(ctx, "user-a")
		require.NoError(t, err)
		assert.Equal(t, 1212, got.Elo)
		assert.Equal(t, 1, got.Wins)
	})

	t.Run("Find on a missing identity", func(t *testing.T) {
		repo := newRatingRepo(t)

		_, err := repo.Find(ctx, "user-missing")
		require.ErrorIs(t, err, apperror.ErrNotFound)
	})
}
