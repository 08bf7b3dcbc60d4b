package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/printprice/printprice/internal/config"
	"github.com/printprice/printprice/internal/logger"
)

// DB is the database handle shared by all repositories. It routes every
// statement through the transaction bound to the context when one exists,
// so repository code is identical inside and outside WithTx.
type DB struct {
	*sqlx.DB
	logger *logger.Logger
}

// querier is the subset of sqlx shared by *sqlx.DB and *sqlx.Tx that the
// repositories actually issue. Everything in this codebase goes through
// named statements.
type querier interface {
	NamedExec(query string, arg interface{}) (sql.Result, error)
	NamedQuery(query string, arg interface{}) (*sqlx.Rows, error)
}

// NewDB connects to Postgres and applies the pool limits from config.
// sqlx.Connect pings, so a bad DSN fails here rather than on first use.
func NewDB(cfg *config.Configuration, logger *logger.Logger) (*DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Postgres.GetDSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetimeMinutes) * time.Minute)

	return &DB{DB: db, logger: logger}, nil
}

// Close releases the connection pool.
func (db *DB) Close() {
	if err := db.DB.Close(); err != nil {
		db.logger.Errorw("failed to close database", "error", err)
	}
}

// queryTarget picks the context transaction when present, the pool
// otherwise, and wraps either with query logging.
func (db *DB) queryTarget(ctx context.Context) querier {
	if tx, ok := getTx(ctx); ok {
		return &tracedQuerier{q: tx.Tx, logger: db.logger, txID: tx.id}
	}
	return &tracedQuerier{q: db.DB, logger: db.logger}
}

// NamedExecContext runs a named statement against the context's
// transaction, or the pool when none is open.
func (db *DB) NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error) {
	return db.queryTarget(ctx).NamedExec(query, arg)
}

// NamedQueryContext runs a named query against the context's transaction,
// or the pool when none is open.
func (db *DB) NamedQueryContext(ctx context.Context, query string, arg interface{}) (*sqlx.Rows, error) {
	return db.queryTarget(ctx).NamedQuery(query, arg)
}
