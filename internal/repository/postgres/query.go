package postgres

import (
	"github.com/printprice/printprice/internal/types"
)

// orderByClause renders the ORDER BY for a list query. The requested sort
// key is resolved through the repository's column whitelist so request
// input never reaches the SQL text; unknown keys fall back to created_at.
func orderByClause(sort, order string, columns map[string]string) string {
	col, ok := columns[sort]
	if !ok {
		col = "created_at"
	}
	dir := " DESC"
	if order == types.OrderAsc {
		dir = " ASC"
	}
	return " ORDER BY " + col + dir
}
