package popugame

import (
	"encoding/json"
	"fmt"
)

const DefaultBoardSize = 9

// Player is a seat index on the board.
type Player int8

const (
	NoPlayer   Player = -1
	PlayerZero Player = 0
	PlayerOne  Player = 1
)

func (that Player) Opponent() Player {
	if that == PlayerZero {
		return PlayerOne
	}
	return PlayerZero
}

func (that Player) IsValid() bool {
	return that == PlayerZero || that == PlayerOne
}

// Cell holds at most one token and one claim. A token and a claim may
// coexist on one cell, but each belongs to a single player.
type Cell struct {
	Token Player
	Claim Player
}

// Wire encoding of a cell, kept bit-compatible with stored grids:
// 1 = player-0 token, 2 = player-0 claim, 4 = player-1 token, 8 = player-1 claim.
const (
	bitTokenP0 = 1
	bitClaimP0 = 2
	bitTokenP1 = 4
	bitClaimP1 = 8
)

var emptyCell = Cell{Token: NoPlayer, Claim: NoPlayer}

func (that Cell) IsEmpty() bool {
	return that.Token == NoPlayer && that.Claim == NoPlayer
}

func (that Cell) MarshalJSON() ([]byte, error) {
	var bits int
	switch that.Token {
	case PlayerZero:
		bits |= bitTokenP0
	case PlayerOne:
		bits |= bitTokenP1
	}
	switch that.Claim {
	case PlayerZero:
		bits |= bitClaimP0
	case PlayerOne:
		bits |= bitClaimP1
	}

	return json.Marshal(bits)
}

func (that *Cell) UnmarshalJSON(data []byte) error {
	var bits int
	if err := json.Unmarshal(data, &bits); err != nil {
		return fmt.Errorf("failed to unmarshal cell: %w", err)
	}

	*that = emptyCell
	switch {
	case bits&bitTokenP0 != 0:
		that.Token = PlayerZero
	case bits&bitTokenP1 != 0:
		that.Token = PlayerOne
	}
	switch {
	case bits&bitClaimP0 != 0:
		that.Claim = PlayerZero
	case bits&bitClaimP1 != 0:
		that.Claim = PlayerOne
	}

	return nil
}

// Point addresses one cell.
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Board is a square grid of cells.
type Board [][]Cell

func NewBoard(size int) Board {
	board := make(Board, size)
	for row := range board {
		board[row] = make([]Cell, size)
		for col := range board[row] {
			board[row][col] = emptyCell
		}
	}

	return board
}

func (that Board) Size() int {
	return len(that)
}

func (that Board) InBounds(row, col int) bool {
	return row >= 0 && row < len(that) && col >= 0 && col < len(that)
}

// IsLegalMove reports whether player may place a token at (row, col):
// the cell must hold no token and no opposing claim. A player may move
// onto a cell they claim themselves.
func (that Board) IsLegalMove(player Player, row, col int) bool {
	if !player.IsValid() || !that.InBounds(row, col) {
		return false
	}

	cell := that[row][col]
	if cell.Token != NoPlayer {
		return false
	}

	return cell.Claim != player.Opponent()
}

func (that Board) LegalMoves(player Player) []Point {
	var moves []Point
	for row := range that {
		for col := range that[row] {
			if that.IsLegalMove(player, row, col) {
				moves = append(moves, Point{Row: row, Col: col})
			}
		}
	}

	return moves
}

// Scores returns the number of cells claimed by each player.
func (that Board) Scores() (int, int) {
	var p0, p1 int
	for row := range that {
		for col := range that[row] {
			switch that[row][col].Claim {
			case PlayerZero:
				p0++
			case PlayerOne:
				p1++
			}
		}
	}

	return p0, p1
}
