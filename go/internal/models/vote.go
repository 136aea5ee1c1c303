package models

import "time"

// Vote is one player's card for an issue. At most one exists per (IssueID, PlayerID).
type Vote struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"issue_id"`
	PlayerID  string    `json:"player_id"`
	Value     string    `json:"value"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// ConfidenceVote is a game-scoped 1-5 sentiment. At most one exists per (GameID, PlayerID).
type ConfidenceVote struct {
	ID          string    `json:"id"`
	GameID      string    `json:"game_id"`
	PlayerID    string    `json:"player_id"`
	Value       int       `json:"value"`
	SessionName *string   `json:"session_name"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	MinConfidence = 1
	MaxConfidence = 5
)
