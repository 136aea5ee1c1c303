package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS local_identity (
	game_id    TEXT PRIMARY KEY,
	player_id  TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore persists identities in a local SQLite file so they survive restarts.
type SQLiteStore struct {
	db    *sql.DB
	clock clockwork.Clock
}

// OpenSQLite opens (and creates) the store at path. ":memory:" keeps it in memory.
func OpenSQLite(path string, clock clockwork.Clock) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one connection, so ":memory:" is a single database
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create identity table: %w", err)
	}
	return &SQLiteStore{db: db, clock: clock}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, gameID string) (string, error) {
	var playerID string
	err := s.db.QueryRowContext(ctx, `SELECT player_id FROM local_identity WHERE game_id = ?`, gameID).Scan(&playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get identity: %w", err)
	}
	return playerID, nil
}

func (s *SQLiteStore) Save(ctx context.Context, gameID, playerID string) error {
	if gameID == "" || playerID == "" {
		return errors.New("game id and player id are required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO local_identity (game_id, player_id, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(game_id) DO UPDATE SET player_id = excluded.player_id, updated_at = excluded.updated_at`,
		gameID, playerID, s.clock.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, gameID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_identity WHERE game_id = ?`, gameID); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_identity`); err != nil {
		return fmt.Errorf("clear identities: %w", err)
	}
	return nil
}
