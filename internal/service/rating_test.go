package service

import (
	"context"
	"testing"

	"github.com/rocketscienceinc/popugame-backend/internal/entity"
	"github.com/rocketscienceinc/popugame-backend/internal/popugame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ratedSession(winner *popugame.Player) *entity.Session {
	session := entity.NewSession("ABC234", 9, 40, &entity.PlayerSlot{Identity: "user-a"})
	session.Players[1] = &entity.PlayerSlot{Identity: "user-b"}
	session.Finish(winner, entity.EndedReasonConcede)

	return session
}

func TestRatingService_GetElo(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRatingRepo()
	rating := NewRatingService(repo, 24, 1200)

	// When: a first-time player is looked up
	elo, err := rating.GetElo(ctx, "user-a")
	require.NoError(t, err)

	// Then: the default rating is returned and persisted
	assert.Equal(t, 1200, elo)

	stored, err := repo.Find(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, 1200, stored.Elo)
	assert.Zero(t, stored.GamesPlayed)
}

func TestRatingService_FinalizeSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Equal ratings shift by half the K factor", func(t *testing.T) {
		repo := newFakeRatingRepo()
		rating := NewRatingService(repo, 24, 1200)

		winner := popugame.PlayerZero
		session := ratedSession(&winner)

		require.NoError(t, rating.FinalizeSession(ctx, session))

		require.True(t, session.RatingsApplied)
		assert.Equal(t, 12, *session.EloDeltaP0)
		assert.Equal(t, -12, *session.EloDeltaP1)
		assert.Equal(t, 1212, *session.EloAfterP0)
		assert.Equal(t, 1188, *session.EloAfterP1)

		loser, err := repo.Find(ctx, "user-b")
		require.NoError(t, err)
		assert.Equal(t, 1188, loser.Elo)
		assert.Equal(t, 1, loser.Losses)
		assert.Equal(t, 1, loser.GamesPlayed)
	})

	t.Run("Favorite beating an underdog gains little", func(t *testing.T) {
		repo := newFakeRatingRepo()
		require.NoError(t, repo.Save(ctx, &entity.Rating{Identity: "user-a", Elo: 1600}))
		require.NoError(t, repo.Save(ctx, &entity.Rating{Identity: "user-b", Elo: 1200}))

		rating := NewRatingService(repo, 24, 1200)

		winner := popugame.PlayerZero
		session := ratedSession(&winner)

		require.NoError(t, rating.FinalizeSession(ctx, session))

		// E(1600 vs 1200) ~ 0.909, so the winner moves by round(24 * 0.091) = 2
		assert.Equal(t, 2, *session.EloDeltaP0)
		assert.Equal(t, -2, *session.EloDeltaP1)
	})

	t.Run("Draw between equals changes nothing", func(t *testing.T) {
		repo := newFakeRatingRepo()
		rating := NewRatingService(repo, 24, 1200)

		session := ratedSession(nil)

		require.NoError(t, rating.FinalizeSession(ctx, session))

		assert.Zero(t, *session.EloDeltaP0)
		assert.Zero(t, *session.EloDeltaP1)

		stored, err := repo.Find(ctx, "user-a")
		require.NoError(t, err)
		assert.Equal(t, 1, stored.Draws)
	})

	t.Run("Second finalize is a no-op", func(t *testing.T) {
		repo := newFakeRatingRepo()
		rating := NewRatingService(repo, 24, 1200)

		winner := popugame.PlayerZero
		session := ratedSession(&winner)

		require.NoError(t, rating.FinalizeSession(ctx, session))
		require.NoError(t, rating.FinalizeSession(ctx, session))

		stored, err := repo.Find(ctx, "user-a")
		require.NoError(t, err)
		assert.Equal(t, 1, stored.GamesPlayed)
		assert.Equal(t, 1212, stored.Elo)
	})

	t.Run("Unfinished session is skipped", func(t *testing.T) {
		repo := newFakeRatingRepo()
		rating := NewRatingService(repo, 24, 1200)

		session := entity.NewSession("ABC234", 9, 40, &entity.PlayerSlot{Identity: "user-a"})
		session.Players[1] = &entity.PlayerSlot{Identity: "user-b"}
		session.Status = entity.StatusActive

		require.NoError(t, rating.FinalizeSession(ctx, session))

		assert.False(t, session.RatingsApplied)
		assert.Nil(t, session.EloDeltaP0)
	})

	t.Run("Anonymous seat is skipped", func(t *testing.T) {
		repo := newFakeRatingRepo()
		rating := NewRatingService(repo, 24, 1200)

		winner := popugame.PlayerZero
		session := ratedSession(&winner)
		session.Players[1].Identity = entity.AnonPrefix + "guest"

		require.NoError(t, rating.FinalizeSession(ctx, session))

		assert.False(t, session.RatingsApplied)
	})
}
