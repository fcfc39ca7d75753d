package history

import (
	"context"

	"github.com/uptrace/bun"
)

// Recorder appends terminal outcomes to the ledger.
type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}

// SQLRecorder implements Recorder over a SQLite-backed bun.DB.
type SQLRecorder struct {
	db *bun.DB
}

// NewSQLRecorder builds a Recorder. The schema must already have been
// created via InitDB.
func NewSQLRecorder(db *bun.DB) *SQLRecorder {
	return &SQLRecorder{db: db}
}

// Record inserts a single outcome row. If o.OccurredAt is zero, it is set
// to the current time before insertion.
func (r *SQLRecorder) Record(ctx context.Context, o Outcome) error {
	model := fromOutcome(o)
	_, err := r.db.NewInsert().Model(model).Exec(ctx)
	return err
}
