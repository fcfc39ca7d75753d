package history

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Observer provides read-only access to recorded outcomes.
type Observer interface {
	Get(ctx context.Context, taskID uuid.UUID) ([]Outcome, error)
	List(ctx context.Context, kind OutcomeKind, limit int) ([]Outcome, error)
}

// SQLObserver implements Observer over a SQLite-backed bun.DB.
type SQLObserver struct {
	db *bun.DB
}

func NewSQLObserver(db *bun.DB) *SQLObserver {
	return &SQLObserver{db: db}
}

// Get returns every recorded outcome for taskID, oldest first. A task that
// was reverted and retried may have more than one terminal outcome only if
// it was separately cancelled and later completed under a new Task value;
// within a single Task's lifetime at most one outcome is ever recorded.
func (o *SQLObserver) Get(ctx context.Context, taskID uuid.UUID) ([]Outcome, error) {
	var rows []outcomeModel
	if err := o.db.NewSelect().
		Model(&rows).
		Where("task_id = ?", taskID).
		OrderExpr("occurred_at ASC").
		Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]Outcome, len(rows))
	for i := range rows {
		out[i] = rows[i].toOutcome()
	}
	return out, nil
}

// List returns up to limit outcomes filtered by kind (Unknown applies no
// filter), most recent first.
func (o *SQLObserver) List(ctx context.Context, kind OutcomeKind, limit int) ([]Outcome, error) {
	var rows []outcomeModel
	query := o.db.NewSelect().Model(&rows).OrderExpr("occurred_at DESC")
	if kind != Unknown {
		query = query.Where("kind = ?", kind)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]Outcome, len(rows))
	for i := range rows {
		out[i] = rows[i].toOutcome()
	}
	return out, nil
}
