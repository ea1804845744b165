package popugame

import (
	"testing"

	"github.com/rocketscienceinc/popugame-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_IsLegalMove(t *testing.T) {
	t.Run("Rejects occupied and opponent-claimed cells", func(t *testing.T) {
		// Given: a board with a token and an opposing claim
		board := NewBoard(3)
		board[0][0].Token = PlayerZero
		board[0][1].Claim = PlayerOne

		// Then: neither player may move onto a token, and the claim blocks only the opponent
		assert.False(t, board.IsLegalMove(PlayerOne, 0, 0))
		assert.False(t, board.IsLegalMove(PlayerZero, 0, 0))
		assert.False(t, board.IsLegalMove(PlayerZero, 0, 1))
		assert.True(t, board.IsLegalMove(PlayerOne, 0, 1))
	})

	t.Run("Allows moving onto own claim", func(t *testing.T) {
		// Given: a cell claimed by the mover
		board := NewBoard(3)
		board[1][1].Claim = PlayerZero

		// Then: the claim owner may still place a token there
		assert.True(t, board.IsLegalMove(PlayerZero, 1, 1))
	})

	t.Run("Rejects out of bounds", func(t *testing.T) {
		board := NewBoard(3)

		assert.False(t, board.IsLegalMove(PlayerZero, -1, 0))
		assert.False(t, board.IsLegalMove(PlayerZero, 0, 3))
	})
}

func TestBoard_LegalMoves(t *testing.T) {
	// Given: a 2x2 board with one token and one opposing claim
	board := NewBoard(2)
	board[0][0].Token = PlayerOne
	board[0][1].Claim = PlayerOne

	// When: player 0 asks for legal moves
	moves := board.LegalMoves(PlayerZero)

	// Then: only the two unblocked cells remain
	require.ElementsMatch(t, []Point{{Row: 1, Col: 0}, {Row: 1, Col: 1}}, moves)
}

func TestApplyMove_IllegalMove(t *testing.T) {
	board := NewBoard(3)
	board[0][0].Token = PlayerOne

	err := ApplyMove(board, PlayerZero, 0, 0)
	require.ErrorIs(t, err, apperror.ErrIllegalMove)

	err = ApplyMove(board, PlayerZero, 5, 5)
	require.ErrorIs(t, err, apperror.ErrIllegalMove)
}

func TestApplyMove_ClaimsAndClearsThreeInRow(t *testing.T) {
	// Given: two player-0 tokens in a row
	board := NewBoard(5)
	board[2][1].Token = PlayerZero
	board[2][2].Token = PlayerZero

	// When: the third token completes the run
	err := ApplyMove(board, PlayerZero, 2, 3)
	require.NoError(t, err)

	// Then: the run cells lose their tokens and gain claims
	for col := 1; col <= 3; col++ {
		assert.Equal(t, NoPlayer, board[2][col].Token, "col %d", col)
		assert.Equal(t, PlayerZero, board[2][col].Claim, "col %d", col)
	}

	// Then: the claim extends across the whole row (no opposing token bounds it)
	for col := 0; col < 5; col++ {
		assert.Equal(t, PlayerZero, board[2][col].Claim, "col %d", col)
	}
}

func TestApplyMove_FullRowScenario(t *testing.T) {
	// Given: an empty 9x9 board
	board := NewBoard(9)

	// When: player 0 places at (4,2), (4,3), (4,4)
	require.NoError(t, ApplyMove(board, PlayerZero, 4, 2))
	require.NoError(t, ApplyMove(board, PlayerZero, 4, 3))
	require.NoError(t, ApplyMove(board, PlayerZero, 4, 4))

	// Then: cells (4,0)..(4,8) are all claimed by player 0 and hold no tokens
	for col := 0; col < 9; col++ {
		assert.Equal(t, PlayerZero, board[4][col].Claim, "col %d", col)
		assert.Equal(t, NoPlayer, board[4][col].Token, "col %d", col)
	}
}

func TestApplyMove_ExtensionStopsAtOpposingToken(t *testing.T) {
	// Given: a row where an opposing token bounds the extension on the right
	board := NewBoard(9)
	board[4][2].Token = PlayerZero
	board[4][3].Token = PlayerZero
	board[4][6].Token = PlayerOne

	// When: the run completes
	err := ApplyMove(board, PlayerZero, 4, 4)
	require.NoError(t, err)

	// Then: the claim reaches the opposing token and stops before it
	for col := 0; col <= 5; col++ {
		assert.Equal(t, PlayerZero, board[4][col].Claim, "col %d", col)
	}
	assert.Equal(t, NoPlayer, board[4][6].Claim)

	// Then: the opposing token survives claim resolution
	assert.Equal(t, PlayerOne, board[4][6].Token)
}

func TestApplyMove_VerticalRun(t *testing.T) {
	board := NewBoard(5)
	board[1][2].Token = PlayerOne
	board[2][2].Token = PlayerOne

	err := ApplyMove(board, PlayerOne, 3, 2)
	require.NoError(t, err)

	for row := 0; row < 5; row++ {
		assert.Equal(t, PlayerOne, board[row][2].Claim, "row %d", row)
	}
	for row := 1; row <= 3; row++ {
		assert.Equal(t, NoPlayer, board[row][2].Token, "row %d", row)
	}
}

func TestApplyMove_DiagonalRun(t *testing.T) {
	// Given: two player-0 tokens on the down-right diagonal
	board := NewBoard(5)
	board[1][1].Token = PlayerZero
	board[2][2].Token = PlayerZero

	// When: the third diagonal token lands
	err := ApplyMove(board, PlayerZero, 3, 3)
	require.NoError(t, err)

	// Then: the whole diagonal is claimed and the run cells are cleared
	for i := 0; i < 5; i++ {
		assert.Equal(t, PlayerZero, board[i][i].Claim, "cell (%d,%d)", i, i)
	}
	for i := 1; i <= 3; i++ {
		assert.Equal(t, NoPlayer, board[i][i].Token, "cell (%d,%d)", i, i)
	}
}

func TestApplyMove_ClaimOverwritesOpponentClaim(t *testing.T) {
	// Given: player 1 claims inside the future extension of a player-0 run
	board := NewBoard(5)
	board[2][0].Claim = PlayerOne
	board[2][1].Token = PlayerZero
	board[2][2].Token = PlayerZero

	// When: player 0 completes the run
	err := ApplyMove(board, PlayerZero, 2, 3)
	require.NoError(t, err)

	// Then: the opposing claim is displaced
	assert.Equal(t, PlayerZero, board[2][0].Claim)
}

func TestApplyMove_ShortRunDoesNotResolve(t *testing.T) {
	board := NewBoard(5)
	board[2][1].Token = PlayerZero

	err := ApplyMove(board, PlayerZero, 2, 2)
	require.NoError(t, err)

	// Then: two in a row leaves both tokens in place and claims nothing
	assert.Equal(t, PlayerZero, board[2][1].Token)
	assert.Equal(t, PlayerZero, board[2][2].Token)

	score0, score1 := board.Scores()
	assert.Zero(t, score0)
	assert.Zero(t, score1)
}

func TestBoard_Scores(t *testing.T) {
	// Given: a mix of claims and tokens
	board := NewBoard(3)
	board[0][0].Claim = PlayerZero
	board[0][1].Claim = PlayerZero
	board[1][1].Claim = PlayerOne
	board[2][2].Token = PlayerZero

	// When: scores are computed
	score0, score1 := board.Scores()

	// Then: only claim-flagged cells count
	assert.Equal(t, 2, score0)
	assert.Equal(t, 1, score1)
	assert.LessOrEqual(t, score0+score1, 9)
}
