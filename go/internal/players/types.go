package players

import "github.com/mcdev12/planningpoker/go/internal/models"

// JoinRequest represents the data needed to join a game
type JoinRequest struct {
	GameID      string
	Name        string
	Avatar      *string
	IsSpectator bool
}

// JoinResult is the new player and whether the join claimed the admin slot.
type JoinResult struct {
	Player  models.Player
	IsAdmin bool
}

// UpdateProfileRequest represents a player's own name/avatar edit
type UpdateProfileRequest struct {
	GameID   string
	PlayerID string
	Name     string
	Avatar   *string
}

// SetSpectatorRequest toggles TargetID's spectator flag on behalf of ActorID.
type SetSpectatorRequest struct {
	GameID      string
	ActorID     string
	TargetID    string
	IsSpectator bool
}
