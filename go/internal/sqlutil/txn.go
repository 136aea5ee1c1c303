package sqlutil

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxBeginner is satisfied by *pgxpool.Pool and pgx.Tx.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Run executes fn inside a pgx.Tx.
// If fn returns an error the tx rolls back, else it commits. Errors come back classified.
func Run[T any](
	ctx context.Context,
	db TxBeginner,
	opts pgx.TxOptions,
	newQueries func(pgx.Tx) *T,
	fn func(q *T) error,
) error {
	tx, err := db.BeginTx(ctx, opts) // BEGIN
	if err != nil {
		return Classify(err)
	}
	q := newQueries(tx) // bind Queries to this tx
	if err := fn(q); err != nil {
		_ = tx.Rollback(ctx) // ROLLBACK
		return Classify(err)
	}
	return Classify(tx.Commit(ctx)) // COMMIT
}

// ReadOnly is the option set for list reads.
var ReadOnly = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

// SnapshotRead is for reads that first wait out a game's writers with db.SnapshotHighWater. Each
// statement must see what committed before the lock was granted, so this is read committed.
var SnapshotRead = pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadOnly}
