package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/printprice/printprice/internal/logger"
)

// tracedQuerier logs every statement with its duration and, when inside a
// transaction, the transaction id. Failures log at error level with the
// statement attached so slow or broken SQL is visible without a debugger.
type tracedQuerier struct {
	q      querier
	logger *logger.Logger
	txID   string
}

func (tq *tracedQuerier) NamedExec(query string, arg interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := tq.q.NamedExec(query, arg)
	tq.observe(start, query, arg, err)
	return res, err
}

func (tq *tracedQuerier) NamedQuery(query string, arg interface{}) (*sqlx.Rows, error) {
	start := time.Now()
	rows, err := tq.q.NamedQuery(query, arg)
	tq.observe(start, query, arg, err)
	return rows, err
}

func (tq *tracedQuerier) observe(start time.Time, query string, arg interface{}, err error) {
	fields := []interface{}{
		"duration_ms", time.Since(start).Milliseconds(),
		"query", query,
		"params", fmt.Sprintf("%+v", arg),
	}
	if tq.txID != "" {
		fields = append(fields, "tx_id", tq.txID)
	}
	if err != nil {
		fields = append(fields, "error", err.Error())
		tq.logger.Errorw("query failed", fields...)
		return
	}
	tq.logger.Debugw("query completed", fields...)
}
