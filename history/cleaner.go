package history

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Cleaner deletes outcomes older than a cutoff. Unlike the teacher's
// terminal-status restriction, every row in this ledger is already
// terminal by construction, so Cleaner takes no status filter.
type Cleaner interface {
	Clean(ctx context.Context, before time.Time) (int64, error)
}

// SQLCleaner implements Cleaner over a SQLite-backed bun.DB.
type SQLCleaner struct {
	db *bun.DB
}

func NewSQLCleaner(db *bun.DB) *SQLCleaner {
	return &SQLCleaner{db: db}
}

// Clean deletes every outcome with OccurredAt <= before, returning the
// number of rows removed.
func (c *SQLCleaner) Clean(ctx context.Context, before time.Time) (int64, error) {
	res, err := c.db.NewDelete().
		Model((*outcomeModel)(nil)).
		Where("occurred_at <= ?", before).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return getAffected(res), nil
}
