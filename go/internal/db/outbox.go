package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

const changeColumns = `seq, id, game_id, table_name, op, row_id, row_data, created_at`

type InsertChangeParams struct {
	ID      uuid.UUID
	GameID  string
	Table   models.Table
	Op      models.Op
	RowID   string
	RowData pqtype.NullRawMessage
}

func scanChange(row pgx.Row) (*models.ChangeEvent, error) {
	var (
		c   models.ChangeEvent
		id  uuid.UUID
		raw pqtype.NullRawMessage
	)
	if err := row.Scan(&c.Seq, &id, &c.GameID, &c.Table, &c.Op, &c.RowID, &raw, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.ID = id.String()
	c.Row = sqlutil.FromNullRawMessage(raw)
	return &c, nil
}

// lockGameChanges takes the game's change lock in shared mode until commit. Writers take it
// before their seq is allocated, so SnapshotHighWater can wait for every in-flight write.
func (q *Queries) lockGameChanges(ctx context.Context, gameID string) error {
	if _, err := q.db.Exec(ctx, `SELECT pg_advisory_xact_lock_shared(hashtext($1)::bigint)`, gameID); err != nil {
		return fmt.Errorf("lock game changes: %w", err)
	}
	return nil
}

// SnapshotHighWater waits until no transaction is recording changes for gameID, then returns the
// highest seq recorded for it. Reads later in the same transaction include every change up to
// that seq and none after it, since writers block until the transaction ends.
func (q *Queries) SnapshotHighWater(ctx context.Context, gameID string) (int64, error) {
	if _, err := q.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1)::bigint)`, gameID); err != nil {
		return 0, fmt.Errorf("lock game changes: %w", err)
	}
	var seq int64
	if err := q.db.QueryRow(ctx, `SELECT COALESCE(MAX(seq), 0) FROM change_outbox WHERE game_id = $1`, gameID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("read change high water: %w", err)
	}
	return seq, nil
}

func (q *Queries) InsertChange(ctx context.Context, arg InsertChangeParams) error {
	const query = `
		INSERT INTO change_outbox (id, game_id, table_name, op, row_id, row_data)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := q.db.Exec(ctx, query, arg.ID, arg.GameID, arg.Table, arg.Op, arg.RowID, arg.RowData)
	if err != nil {
		return fmt.Errorf("insert change: %w", err)
	}
	return nil
}

// RecordChange appends a row change to the outbox. It must run in the same transaction as the
// write it describes. row may be nil for deletes.
func (q *Queries) RecordChange(ctx context.Context, gameID string, table models.Table, op models.Op, rowID string, row any) error {
	var raw []byte
	if row != nil {
		b, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("marshal %s row: %w", table, err)
		}
		raw = b
	}
	if err := q.lockGameChanges(ctx, gameID); err != nil {
		return err
	}
	return q.InsertChange(ctx, InsertChangeParams{
		ID:      uuid.New(),
		GameID:  gameID,
		Table:   table,
		Op:      op,
		RowID:   rowID,
		RowData: sqlutil.ToNullRawMessage(raw),
	})
}

// FetchUnsentChangeByID returns the event if it exists and has not been relayed yet.
func (q *Queries) FetchUnsentChangeByID(ctx context.Context, id uuid.UUID) (*models.ChangeEvent, error) {
	row := q.db.QueryRow(ctx, `SELECT `+changeColumns+` FROM change_outbox WHERE id = $1 AND sent_at IS NULL`, id)
	return scanChange(row)
}

// FetchUnsentChanges returns the oldest unsent events in commit-sequence order.
func (q *Queries) FetchUnsentChanges(ctx context.Context, limit int) ([]models.ChangeEvent, error) {
	rows, err := q.db.Query(ctx, `SELECT `+changeColumns+` FROM change_outbox WHERE sent_at IS NULL ORDER BY seq LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unsent changes: %w", err)
	}
	return collect(rows, scanChange)
}

func (q *Queries) MarkChangeSent(ctx context.Context, id uuid.UUID) error {
	if _, err := q.db.Exec(ctx, `UPDATE change_outbox SET sent_at = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark change sent: %w", err)
	}
	return nil
}

func (q *Queries) CountPendingChanges(ctx context.Context) (int64, error) {
	var n int64
	if err := q.db.QueryRow(ctx, `SELECT count(*) FROM change_outbox WHERE sent_at IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending changes: %w", err)
	}
	return n, nil
}
