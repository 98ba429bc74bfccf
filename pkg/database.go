package pkg

import (
	"github.com/blastrain/vitess-sqlparser/sqlparser"
)

// IsSafeSelect reports whether the statement parses as a plain SELECT. Dataset
// source queries are executed verbatim inside a subquery, so anything else
// (DDL, DML, multi-statement) is refused before it reaches a connection.
func IsSafeSelect(sql string) bool {
	stmt, err := sqlparser.Parse(sql)
	if err != nil {
		return false
	}
	switch stmt.(type) {
	case *sqlparser.Select:
		return true
	default:
		return false
	}
}
