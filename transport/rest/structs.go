package rest

import (
	"context"

	"github.com/rocketscienceinc/popugame-backend/internal/entity"
	"github.com/rocketscienceinc/popugame-backend/internal/popugame"
)

type createRequest struct {
	GuestName string `json:"guest_name,omitempty"`
}

type joinRequest struct {
	Code      string `json:"code"`
	GuestName string `json:"guest_name,omitempty"`
}

type moveRequest struct {
	Code string `json:"code"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

type concedeRequest struct {
	Code string `json:"code"`
}

type response struct {
	OK      bool          `json:"ok"`
	Kind    string        `json:"kind,omitempty"`
	Message string        `json:"message,omitempty"`
	Code    string        `json:"code,omitempty"`
	Player  *int          `json:"player,omitempty"`
	State   *statePayload `json:"state,omitempty"`
}

type statePayload struct {
	Code           string           `json:"code"`
	Status         string           `json:"status"`
	Grid           popugame.Board   `json:"grid"`
	GridSize       int              `json:"grid_size"`
	TurnLimit      int              `json:"turn_limit"`
	Turn           int              `json:"turn"`
	ActivePlayer   popugame.Player  `json:"active_player"`
	Winner         *popugame.Player `json:"winner"`
	EndedReason    string           `json:"ended_reason,omitempty"`
	StateVersion   int64            `json:"state_version"`
	Player0Name    string           `json:"player0_name"`
	Player1Name    string           `json:"player1_name"`
	Player0Elo     *int             `json:"player0_elo"`
	Player1Elo     *int             `json:"player1_elo"`
	RatingsApplied bool             `json:"ratings_applied"`
	EloDeltaP0     *int             `json:"elo_delta_p0,omitempty"`
	EloDeltaP1     *int             `json:"elo_delta_p1,omitempty"`
	EloAfterP0     *int             `json:"elo_after_p0,omitempty"`
	EloAfterP1     *int             `json:"elo_after_p1,omitempty"`
}

// statePayload masks identities: only public display names and ratings
// leave the server.
func (that *Server) statePayload(ctx context.Context, session *entity.Session) *statePayload {
	elo0, elo1 := that.game.SessionElos(ctx, session)

	return &statePayload{
		Code:           session.Code,
		Status:         session.Status,
		Grid:           session.Board,
		GridSize:       session.GridSize,
		TurnLimit:      session.TurnLimit,
		Turn:           session.Turn,
		ActivePlayer:   session.ActivePlayer,
		Winner:         session.Winner,
		EndedReason:    session.EndedReason,
		StateVersion:   session.StateVersion,
		Player0Name:    session.Players[0].PublicName(),
		Player1Name:    session.Players[1].PublicName(),
		Player0Elo:     elo0,
		Player1Elo:     elo1,
		RatingsApplied: session.RatingsApplied,
		EloDeltaP0:     session.EloDeltaP0,
		EloDeltaP1:     session.EloDeltaP1,
		EloAfterP0:     session.EloAfterP0,
		EloAfterP1:     session.EloAfterP1,
	}
}
