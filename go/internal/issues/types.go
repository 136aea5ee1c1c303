package issues

import "github.com/mcdev12/planningpoker/go/internal/models"

// CreateIssueRequest represents the data needed to add an issue to a game
type CreateIssueRequest struct {
	GameID      string
	PlayerID    string
	Title       string
	Description *string
}

// UpdateIssueRequest represents an admin edit of one issue. Nil fields are left untouched.
type UpdateIssueRequest struct {
	GameID   string
	PlayerID string
	IssueID  string
	Patch    models.IssuePatch
}
