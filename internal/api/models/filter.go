package models

import (
	"fmt"
	"strings"
)

// Filter is a single column/operator/value predicate applied server-side when
// previewing or downloading a dataset. A filter is either fully populated or
// absent; partial filters are rejected before any SQL is built.
type Filter struct {
	Column   string `json:"column"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

const (
	OpEquals         = "eq"
	OpNotEquals      = "neq"
	OpGreaterThan    = "gt"
	OpLessThan       = "lt"
	OpGreaterOrEqual = "gte"
	OpLessOrEqual    = "lte"
	OpContains       = "contains"
)

var filterOperators = map[string]string{
	OpEquals:         "=",
	OpNotEquals:      "!=",
	OpGreaterThan:    ">",
	OpLessThan:       "<",
	OpGreaterOrEqual: ">=",
	OpLessOrEqual:    "<=",
	OpContains:       "LIKE",
}

// Validate reports whether the filter is usable: all three fields present,
// the value not whitespace-only, and the operator known.
func (f Filter) Validate() error {
	if f.Column == "" || f.Operator == "" || strings.TrimSpace(f.Value) == "" {
		return fmt.Errorf("filter requires column, operator and a non-blank value")
	}
	if _, ok := filterOperators[f.Operator]; !ok {
		return fmt.Errorf("unknown filter operator %q", f.Operator)
	}
	return nil
}

// IsZero reports whether no filter was supplied at all.
func (f Filter) IsZero() bool {
	return f.Column == "" && f.Operator == "" && f.Value == ""
}

// SQLCondition renders the predicate as "<col> <op> <placeholder>" with a single
// positional argument, using the dialect's identifier quoting and placeholder style.
func (f Filter) SQLCondition(dbType DBType, argIndex int) (string, interface{}) {
	col := QuoteIdentifier(f.Column, dbType)

	var placeholder string
	switch dbType {
	case DBTypeSQLServer:
		placeholder = fmt.Sprintf("@p%d", argIndex)
	case DBTypeMySQL:
		placeholder = "?"
	default:
		placeholder = fmt.Sprintf("$%d", argIndex)
	}

	op := filterOperators[f.Operator]
	arg := interface{}(f.Value)
	if f.Operator == OpContains {
		arg = "%" + f.Value + "%"
	}
	return fmt.Sprintf("%s %s %s", col, op, placeholder), arg
}

// QuoteIdentifier quotes a column or table name for the given dialect.
func QuoteIdentifier(name string, dbType DBType) string {
	switch dbType {
	case DBTypeSQLServer:
		return fmt.Sprintf("[%s]", name)
	case DBTypeMySQL:
		return fmt.Sprintf("`%s`", name)
	default:
		return fmt.Sprintf(`"%s"`, name)
	}
}
