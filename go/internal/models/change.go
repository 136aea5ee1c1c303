package models

import (
	"encoding/json"
	"time"
)

// Table names the record kind a change event refers to.
type Table string

const (
	TableGames           Table = "games"
	TablePlayers         Table = "players"
	TableIssues          Table = "issues"
	TableVotes           Table = "votes"
	TableConfidenceVotes Table = "confidence_votes"
)

// AllTables lists every record kind carried by the change feed.
var AllTables = []Table{TableGames, TablePlayers, TableIssues, TableVotes, TableConfidenceVotes}

// Op is the row-level operation of a change event.
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// ChangeEvent is one row-level change as delivered on the feed. Row holds the full row as JSON
// for inserts and updates and may be empty for deletes.
type ChangeEvent struct {
	ID        string          `json:"id"`
	Seq       int64           `json:"seq"`
	GameID    string          `json:"game_id"`
	Table     Table           `json:"table"`
	Op        Op              `json:"op"`
	RowID     string          `json:"row_id"`
	Row       json.RawMessage `json:"row,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Snapshot is the initial state of a game as read in one transaction. Seq is the highest change
// already reflected in it; events at or below it carry nothing new.
type Snapshot struct {
	Seq             int64            `json:"seq"`
	Game            Game             `json:"game"`
	Players         []Player         `json:"players"`
	Issues          []Issue          `json:"issues"`
	Votes           []Vote           `json:"votes"`
	ConfidenceVotes []ConfidenceVote `json:"confidence_votes"`
}
