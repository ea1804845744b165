package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/popugame-backend/internal/apperror"
	"github.com/rocketscienceinc/popugame-backend/internal/popugame"
)

const (
	StatusWaiting  = "waiting"
	StatusActive   = "active"
	StatusFinished = "finished"

	EndedReasonTurnLimit = "turn_limit"
	EndedReasonConcede   = "concede"

	DefaultTurnLimit = 40

	// AnonPrefix marks guest identities; they are never shown or rated.
	AnonPrefix = "anon:"

	CodeLength = 6
)

var ErrUnknownStatus = fmt.Errorf("unknown game status")

// PlayerSlot binds one seat of a session to an identity for the session's
// lifetime. A slot is never rebound once set.
type PlayerSlot struct {
	Identity string `json:"identity"`
	Name     string `json:"name"`
}

func (that *PlayerSlot) IsAnonymous() bool {
	return strings.HasPrefix(that.Identity, AnonPrefix)
}

// PublicName returns the display name safe for state payloads.
func (that *PlayerSlot) PublicName() string {
	if that == nil {
		return ""
	}
	if that.Name == "" || strings.HasPrefix(that.Name, AnonPrefix) {
		if that.IsAnonymous() {
			return "Anonymous"
		}
		return that.Name
	}

	return that.Name
}

type Session struct {
	Code         string           `json:"code"`
	Status       string           `json:"status"`
	Board        popugame.Board   `json:"grid"`
	GridSize     int              `json:"grid_size"`
	TurnLimit    int              `json:"turn_limit"`
	Turn         int              `json:"turn"`
	ActivePlayer popugame.Player  `json:"active_player"`
	Winner       *popugame.Player `json:"winner"`
	EndedReason  string           `json:"ended_reason,omitempty"`
	StateVersion int64            `json:"state_version"`
	Players      [2]*PlayerSlot   `json:"players"`

	RatingsApplied bool `json:"ratings_applied"`
	EloDeltaP0     *int `json:"elo_delta_p0,omitempty"`
	EloDeltaP1     *int `json:"elo_delta_p1,omitempty"`
	EloAfterP0     *int `json:"elo_after_p0,omitempty"`
	EloAfterP1     *int `json:"elo_after_p1,omitempty"`
}

func NewSession(code string, gridSize, turnLimit int, host *PlayerSlot) *Session {
	return &Session{
		Code:         code,
		Status:       StatusWaiting,
		Board:        popugame.NewBoard(gridSize),
		GridSize:     gridSize,
		TurnLimit:    turnLimit,
		Turn:         0,
		ActivePlayer: popugame.PlayerZero,
		Players:      [2]*PlayerSlot{host, nil},
	}
}

func (that *Session) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Session) IsActive() bool {
	return that.Status == StatusActive
}

func (that *Session) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Session) ConfirmActiveState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrSessionNotActive
	case that.IsFinished():
		return apperror.ErrSessionFinished
	case that.IsActive():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStatus, that.Status)
	}
}

// SlotOf resolves an identity to its bound seat.
func (that *Session) SlotOf(identity string) (popugame.Player, bool) {
	for i, slot := range that.Players {
		if slot != nil && slot.Identity == identity {
			return popugame.Player(i), true
		}
	}

	return popugame.NoPlayer, false
}

func (that *Session) Slot(player popugame.Player) *PlayerSlot {
	if !player.IsValid() {
		return nil
	}
	return that.Players[player]
}

// Finish moves the session to its terminal state. winner is nil on a draw.
func (that *Session) Finish(winner *popugame.Player, reason string) {
	that.Status = StatusFinished
	that.Winner = winner
	that.EndedReason = reason
}

// IsRated reports whether the session qualifies for rating resolution:
// both seats bound to distinct non-anonymous identities.
func (that *Session) IsRated() bool {
	p0, p1 := that.Players[0], that.Players[1]
	if p0 == nil || p1 == nil {
		return false
	}
	if p0.IsAnonymous() || p1.IsAnonymous() {
		return false
	}

	return p0.Identity != p1.Identity
}

// NormalizeCode upper-cases a code and validates its shape.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != CodeLength {
		return "", apperror.ErrInvalidCode
	}
	for _, r := range code {
		isDigit := r >= '0' && r <= '9'
		isUpper := r >= 'A' && r <= 'Z'
		if !isDigit && !isUpper {
			return "", apperror.ErrInvalidCode
		}
	}

	return code, nil
}
