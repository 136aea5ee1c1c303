package models

import "time"

// GameStatus defines the voting state of a game's current round.
type GameStatus string

const (
	GameStatusVoting   GameStatus = "voting"
	GameStatusRevealed GameStatus = "revealed"
)

// ConfidenceStatus defines the state of a game's confidence session.
type ConfidenceStatus string

const (
	ConfidenceStatusIdle     ConfidenceStatus = "idle"
	ConfidenceStatusVoting   ConfidenceStatus = "voting"
	ConfidenceStatusRevealed ConfidenceStatus = "revealed"
)

// VotingSystem names the card deck a game votes with.
type VotingSystem string

const (
	VotingSystemFibonacci VotingSystem = "fibonacci"
)

// Permission is stored on a game but not enforced; admin gating uses CreatorID only.
type Permission string

const (
	PermissionAll       Permission = "all"
	PermissionModerator Permission = "moderator"
)

// GameSettings holds the tunable part of a game.
type GameSettings struct {
	VotingSystem  VotingSystem `json:"voting_system" yaml:"voting_system"`
	WhoCanReveal  Permission   `json:"who_can_reveal" yaml:"who_can_reveal"`
	WhoCanManage  Permission   `json:"who_can_manage" yaml:"who_can_manage"`
	AutoReveal    bool         `json:"auto_reveal" yaml:"auto_reveal"`
	FunFeatures   bool         `json:"fun_features" yaml:"fun_features"`
	ShowAverage   bool         `json:"show_average" yaml:"show_average"`
	ShowCountdown bool         `json:"show_countdown" yaml:"show_countdown"`
}

// DefaultGameSettings mirrors the settings a new game starts with.
func DefaultGameSettings() GameSettings {
	return GameSettings{
		VotingSystem:  VotingSystemFibonacci,
		WhoCanReveal:  PermissionAll,
		WhoCanManage:  PermissionAll,
		AutoReveal:    false,
		FunFeatures:   true,
		ShowAverage:   true,
		ShowCountdown: true,
	}
}

// Game is one shared estimation session.
type Game struct {
	ID string `json:"id"`
	GameSettings
	Name             string           `json:"name"`
	HostPlayerID     *string          `json:"host_player_id"`
	CurrentIssueID   *string          `json:"current_issue_id"`
	Status           GameStatus       `json:"status"`
	CreatorID        *string          `json:"creator_id"`
	ConfidenceStatus ConfidenceStatus `json:"confidence_status"`
	Version          int64            `json:"version"`
	CreatedAt        time.Time        `json:"created_at"`
}

// IsRevealed reports whether the current round's votes are visible.
func (g *Game) IsRevealed() bool {
	return g != nil && g.Status == GameStatusRevealed
}

// IsCreator reports whether playerID holds the admin slot.
func (g *Game) IsCreator(playerID string) bool {
	return g != nil && playerID != "" && g.CreatorID != nil && *g.CreatorID == playerID
}
