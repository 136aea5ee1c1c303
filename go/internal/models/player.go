package models

import "time"

// Player is a participant of a game.
type Player struct {
	ID          string    `json:"id"`
	GameID      string    `json:"game_id"`
	Name        string    `json:"name"`
	Avatar      *string   `json:"avatar"`
	IsSpectator bool      `json:"is_spectator"`
	IsOnline    bool      `json:"is_online"`
	LastSeen    time.Time `json:"last_seen"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
}
