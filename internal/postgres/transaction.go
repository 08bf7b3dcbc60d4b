package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
)

// txKey carries the open transaction through the context.
type txKey struct{}

// tx is a database transaction plus the savepoint depth for nested WithTx
// calls. depth 0 is the real transaction; each nested level maps to a
// Postgres savepoint.
type tx struct {
	*sqlx.Tx
	id    string
	depth int
}

func getTx(ctx context.Context) (*tx, bool) {
	t, ok := ctx.Value(txKey{}).(*tx)
	return t, ok
}

func savepointName(depth int) string {
	return fmt.Sprintf("sp_%d", depth)
}

// WithTx runs fn inside a transaction. The returned context carries the
// transaction, so every repository call made through it joins the same
// unit of work. Nested calls reuse the outer transaction through
// savepoints: an inner failure rolls back only the inner work, and the
// outer level decides whether to continue.
//
// A panic inside fn rolls the transaction back and then repanics.
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, t, err := db.begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			db.logger.Errorw("panic inside transaction, rolling back",
				"tx_id", t.id,
				"panic", r,
			)
			_ = db.rollback(ctx, t)
			panic(r)
		}
	}()

	if err := fn(ctx); err != nil {
		if rbErr := db.rollback(ctx, t); rbErr != nil {
			db.logger.Errorw("rollback failed",
				"tx_id", t.id,
				"error", rbErr,
				"cause", err,
			)
		}
		return err
	}

	return db.commit(ctx, t)
}

// begin opens a transaction, or a savepoint when the context already holds
// one.
func (db *DB) begin(ctx context.Context) (context.Context, *tx, error) {
	if t, ok := getTx(ctx); ok {
		t.depth++
		sp := savepointName(t.depth)
		if _, err := t.ExecContext(ctx, "SAVEPOINT "+sp); err != nil {
			t.depth--
			return ctx, nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
		db.logger.Debugw("savepoint created", "tx_id", t.id, "savepoint", sp)
		return ctx, t, nil
	}

	sqlxTx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return ctx, nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}

	t := &tx{Tx: sqlxTx, id: types.GenerateUUID()}
	db.logger.Debugw("transaction started", "tx_id", t.id)

	return context.WithValue(ctx, txKey{}, t), t, nil
}

// commit releases the current savepoint, or commits when at the top level.
func (db *DB) commit(ctx context.Context, t *tx) error {
	if t.depth > 0 {
		sp := savepointName(t.depth)
		if _, err := t.ExecContext(ctx, "RELEASE SAVEPOINT "+sp); err != nil {
			return ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
		t.depth--
		db.logger.Debugw("savepoint released", "tx_id", t.id, "savepoint", sp)
		return nil
	}

	if err := t.Commit(); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	db.logger.Debugw("transaction committed", "tx_id", t.id)
	return nil
}

// rollback undoes the current savepoint, or rolls the whole transaction
// back when at the top level.
func (db *DB) rollback(ctx context.Context, t *tx) error {
	if t.depth > 0 {
		sp := savepointName(t.depth)
		if _, err := t.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+sp); err != nil {
			return ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
		t.depth--
		db.logger.Debugw("rolled back to savepoint", "tx_id", t.id, "savepoint", sp)
		return nil
	}

	if err := t.Rollback(); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	db.logger.Debugw("transaction rolled back", "tx_id", t.id)
	return nil
}
