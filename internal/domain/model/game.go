// Package model contains domain models passed between layers.
package model

// Location describes where a game was played relative to the home team.
type Location string

// Known game locations.
const (
	LocationHome    Location = "Home"
	LocationAway    Location = "Away"
	LocationNeutral Location = "Neutral"
)

// GameType is the schedule phase of a game, e.g. "REG" or "POST".
type GameType string

// Known game types. Playoff rounds are kept distinct because upstream data
// distinguishes them; only GameTypeRegular feeds HFA observations.
const (
	GameTypeRegular    GameType = "REG"
	GameTypePostseason GameType = "POST"
	GameTypeWildCard   GameType = "WC"
	GameTypeDivisional GameType = "DIV"
	GameTypeConference GameType = "CON"
	GameTypeSuperBowl  GameType = "SB"
)

// GameRecord is one played game. Result is home points minus away points.
type GameRecord struct {
	GameID    string
	Season    int
	Week      int
	HomeTeam  string
	AwayTeam  string
	Result    float64
	StadiumID string
	Location  Location
	GameType  GameType
	HomeQBAdj float64
	AwayQBAdj float64
}

// Before reports whether g is scheduled strictly before other by (season, week).
func (g GameRecord) Before(other GameRecord) bool {
	if g.Season != other.Season {
		return g.Season < other.Season
	}
	return g.Week < other.Week
}

// HfaObservation is the opponent-adjusted margin of a regular season home game.
type HfaObservation struct {
	Season      int     `json:"season"`
	Week        int     `json:"week"`
	Team        string  `json:"team"`
	Stadium     string  `json:"stadium"`
	MOV         float64 `json:"mov"`
	ExpectedMOV float64 `json:"expected_mov"`
	Error       float64 `json:"error"`
}

// Outcome returns win, loss and tie indicators derived from the margin.
func (o HfaObservation) Outcome() (win, loss, tie int) {
	switch {
	case o.MOV > 0:
		return 1, 0, 0
	case o.MOV < 0:
		return 0, 1, 0
	default:
		return 0, 0, 1
	}
}

// TeamRating is a team's rating after the last processed game.
type TeamRating struct {
	Team           string  `json:"team"`
	Elo            float64 `json:"elo"`
	LastGameSeason int     `json:"last_game_season"`
	LastGameWeek   int     `json:"last_game_week"`
}
