// Package pokerv1 is the RPC surface of the planning poker backend: message types, procedure
// names, handler constructors and a client. Messages travel as JSON over connect.
package pokerv1

import "github.com/mcdev12/planningpoker/go/internal/models"

type CreateGameRequest struct {
	Name     string               `json:"name"`
	Settings *models.GameSettings `json:"settings,omitempty"`
}

type CreateGameResponse struct {
	Game models.Game `json:"game"`
}

type GetGameSnapshotRequest struct {
	GameID string `json:"game_id"`
}

type GetGameSnapshotResponse struct {
	Snapshot models.Snapshot `json:"snapshot"`
}

type UpdateGameSettingsRequest struct {
	GameID       string              `json:"game_id"`
	PlayerID     string              `json:"player_id"`
	Name         string              `json:"name"`
	Settings     models.GameSettings `json:"settings"`
	HostPlayerID *string             `json:"host_player_id,omitempty"`
}

// GameResponse is returned by every call whose only effect is a game update.
type GameResponse struct {
	Game models.Game `json:"game"`
}

type RevealVotesRequest struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

type RevealVotesResponse struct {
	Game  models.Game   `json:"game"`
	Issue *models.Issue `json:"issue,omitempty"`
}

type StartNewRoundRequest struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

type SetCurrentIssueRequest struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	IssueID  string `json:"issue_id"`
}

type SetCurrentIssueResponse struct {
	Game  models.Game  `json:"game"`
	Issue models.Issue `json:"issue"`
}

type TransferAdminRequest struct {
	GameID         string `json:"game_id"`
	PlayerID       string `json:"player_id"`
	TargetPlayerID string `json:"target_player_id"`
}

type JoinGameRequest struct {
	GameID      string  `json:"game_id"`
	Name        string  `json:"name"`
	Avatar      *string `json:"avatar,omitempty"`
	IsSpectator bool    `json:"is_spectator"`
}

type JoinGameResponse struct {
	Player  models.Player `json:"player"`
	IsAdmin bool          `json:"is_admin"`
}

type UpdatePlayerProfileRequest struct {
	GameID   string  `json:"game_id"`
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Avatar   *string `json:"avatar,omitempty"`
}

type PlayerResponse struct {
	Player models.Player `json:"player"`
}

type SetSpectatorRequest struct {
	GameID         string `json:"game_id"`
	PlayerID       string `json:"player_id"`
	TargetPlayerID string `json:"target_player_id"`
	IsSpectator    bool   `json:"is_spectator"`
}

type KickPlayerRequest struct {
	GameID         string `json:"game_id"`
	PlayerID       string `json:"player_id"`
	TargetPlayerID string `json:"target_player_id"`
}

type KickPlayerResponse struct {
	TargetPlayerID string `json:"target_player_id"`
}

type CreateIssueRequest struct {
	GameID      string  `json:"game_id"`
	PlayerID    string  `json:"player_id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

type IssueResponse struct {
	Issue models.Issue `json:"issue"`
}

type UpdateIssueRequest struct {
	GameID           string              `json:"game_id"`
	PlayerID         string              `json:"player_id"`
	IssueID          string              `json:"issue_id"`
	Title            *string             `json:"title,omitempty"`
	Description      *string             `json:"description,omitempty"`
	ClearDescription bool                `json:"clear_description,omitempty"`
	Status           *models.IssueStatus `json:"status,omitempty"`
	SortOrder        *int                `json:"sort_order,omitempty"`
}

type DeleteIssueRequest struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	IssueID  string `json:"issue_id"`
}

type DeleteIssueResponse struct {
	IssueID string `json:"issue_id"`
}

type ListIssuesRequest struct {
	GameID string `json:"game_id"`
}

type ListIssuesResponse struct {
	Issues []models.Issue `json:"issues"`
}

type SubmitVoteRequest struct {
	IssueID  string `json:"issue_id"`
	PlayerID string `json:"player_id"`
	Value    string `json:"value"`
}

type SubmitVoteResponse struct {
	Vote models.Vote `json:"vote"`
}

type ListVotesRequest struct {
	IssueID string `json:"issue_id"`
}

type ListVotesResponse struct {
	Votes []models.Vote `json:"votes"`
}

type StartConfidenceVoteRequest struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

type SubmitConfidenceVoteRequest struct {
	GameID      string  `json:"game_id"`
	PlayerID    string  `json:"player_id"`
	Value       int     `json:"value"`
	SessionName *string `json:"session_name,omitempty"`
}

type SubmitConfidenceVoteResponse struct {
	Vote models.ConfidenceVote `json:"vote"`
}

type RevealConfidenceVoteRequest struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

type ListConfidenceVotesRequest struct {
	GameID string `json:"game_id"`
}

type ListConfidenceVotesResponse struct {
	Votes []models.ConfidenceVote `json:"votes"`
}
