package entity

// Rating is the durable Elo record for one identity.
type Rating struct {
	Identity    string `json:"identity"`
	Elo         int    `json:"elo"`
	GamesPlayed int    `json:"games_played"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Draws       int    `json:"draws"`
}
