package history

import (
	"context"
	"errors"

	"github.com/uptrace/bun"
)

func createTable(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().
		Model((*outcomeModel)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func createOccurredIndex(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateIndex().
		Model((*outcomeModel)(nil)).
		Index("idx_outcomes_occurred").
		Column("occurred_at").
		IfNotExists().
		Exec(ctx)
	return err
}

func createTaskIndex(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateIndex().
		Model((*outcomeModel)(nil)).
		Index("idx_outcomes_task").
		Column("task_id").
		IfNotExists().
		Exec(ctx)
	return err
}

func initDB(ctx context.Context, db *bun.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := createTable(ctx, tx); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if err := createOccurredIndex(ctx, tx); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if err := createTaskIndex(ctx, tx); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	return tx.Commit()
}

// InitDB creates the outcomes table and its indexes inside a single
// transaction, if they do not already exist. InitDB is idempotent.
func InitDB(ctx context.Context, db *bun.DB) error {
	return initDB(ctx, db)
}

// MustInitDB behaves like InitDB but panics on failure, for application
// bootstrap code where a missing schema is unrecoverable.
func MustInitDB(ctx context.Context, db *bun.DB) {
	if err := initDB(ctx, db); err != nil {
		panic(err)
	}
}
