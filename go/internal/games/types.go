package games

import "github.com/mcdev12/planningpoker/go/internal/models"

// CreateGameRequest represents the data needed to create a game
type CreateGameRequest struct {
	Name     string
	Settings *models.GameSettings
}

// UpdateSettingsRequest represents an admin edit of the game's settings
type UpdateSettingsRequest struct {
	GameID       string
	PlayerID     string
	Name         string
	Settings     models.GameSettings
	HostPlayerID *string
}

// RevealResult is the game after reveal plus the finalized issue, if the round had votes.
type RevealResult struct {
	Game  models.Game
	Issue *models.Issue
}

// CurrentIssueResult is the game pointed at its new current issue.
type CurrentIssueResult struct {
	Game  models.Game
	Issue models.Issue
}
