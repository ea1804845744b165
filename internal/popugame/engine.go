package popugame

import (
	"github.com/rocketscienceinc/popugame-backend/internal/apperror"
)

const (
	scanRadius = 2
	minRunLen  = 3
)

// Axis processing order is fixed so overlapping claims resolve deterministically.
var axes = []Point{
	{Row: 0, Col: 1},  // horizontal
	{Row: 1, Col: 0},  // vertical
	{Row: 1, Col: 1},  // diagonal down-right
	{Row: 1, Col: -1}, // diagonal down-left
}

type run struct {
	start  Point
	length int
}

// ApplyMove places player's token at (row, col) and resolves claims.
// Each axis through the placed token is scanned in a radius-2 window; the
// longest run of length >= 3 consumes its tokens and extends a claim from
// the run start in both directions until the board edge or an opposing
// token. Removals and claims are each applied in a single pass after all
// axes have been scanned.
func ApplyMove(board Board, player Player, row, col int) error {
	if !board.IsLegalMove(player, row, col) {
		return apperror.ErrIllegalMove
	}

	board[row][col].Token = player

	size := board.Size()
	markClaim := newMask(size)
	markRemove := newMask(size)

	for _, step := range axes {
		found := board.longestRun(player, row, col, step)
		if found.length < minRunLen {
			continue
		}

		cur := found.start
		for i := 0; i < found.length; i++ {
			markRemove[cur.Row][cur.Col] = true
			cur.Row += step.Row
			cur.Col += step.Col
		}

		board.extendClaims(player, markClaim, found.start, step)
	}

	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if markRemove[r][c] {
				board[r][c] = emptyCell
			}
		}
	}

	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if markClaim[r][c] {
				board[r][c].Claim = player
			}
		}
	}

	return nil
}

// longestRun scans the radius-2 window centered on (row, col) along step
// and returns the longest contiguous run of player's tokens. On equal
// lengths the first run found wins.
func (that Board) longestRun(player Player, row, col int, step Point) run {
	start := Point{Row: row - scanRadius*step.Row, Col: col - scanRadius*step.Col}
	for !that.InBounds(start.Row, start.Col) {
		start.Row += step.Row
		start.Col += step.Col
	}

	end := Point{Row: row + scanRadius*step.Row, Col: col + scanRadius*step.Col}
	for !that.InBounds(end.Row, end.Col) {
		end.Row -= step.Row
		end.Col -= step.Col
	}

	var best run
	var current run

	cur := start
	for {
		if that[cur.Row][cur.Col].Token == player {
			if current.length == 0 {
				current.start = cur
			}
			current.length++
		} else {
			if current.length > best.length {
				best = current
			}
			current = run{}
		}

		if cur == end {
			break
		}
		cur.Row += step.Row
		cur.Col += step.Col
	}

	if current.length > best.length {
		best = current
	}

	return best
}

// extendClaims marks every cell reachable from start along step, in both
// directions, stopping at the board edge or an opposing token. The walk
// sees tokens as they stand mid-resolution, before removals are applied.
func (that Board) extendClaims(player Player, mark [][]bool, start Point, step Point) {
	opponent := player.Opponent()

	for _, dir := range []int{1, -1} {
		cur := start
		for {
			if !that.InBounds(cur.Row, cur.Col) || that[cur.Row][cur.Col].Token == opponent {
				break
			}
			mark[cur.Row][cur.Col] = true
			cur.Row += dir * step.Row
			cur.Col += dir * step.Col
		}
	}
}

func newMask(size int) [][]bool {
	mask := make([][]bool, size)
	for i := range mask {
		mask[i] = make([]bool, size)
	}

	return mask
}
