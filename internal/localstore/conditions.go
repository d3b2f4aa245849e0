package localstore

import (
	"fmt"
	"strings"
)

// Condition is a single filter on an index column
type Condition struct {
	Column string
	op     string
	args   []interface{}
}

// Eq matches rows where column equals value
func Eq(column string, value interface{}) Condition {
	return Condition{Column: column, op: "=", args: []interface{}{value}}
}

// Between matches rows where lo <= column <= hi
func Between(column string, lo, hi interface{}) Condition {
	return Condition{Column: column, op: "BETWEEN", args: []interface{}{lo, hi}}
}

// Lt matches rows where column < value
func Lt(column string, value interface{}) Condition {
	return Condition{Column: column, op: "<", args: []interface{}{value}}
}

// Gte matches rows where column >= value
func Gte(column string, value interface{}) Condition {
	return Condition{Column: column, op: ">=", args: []interface{}{value}}
}

// HasPrefix matches rows where a text column starts with prefix
func HasPrefix(column, prefix string) Condition {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	return Condition{Column: column, op: "LIKE", args: []interface{}{escaped + "%"}}
}

func (c Condition) sql() string {
	switch c.op {
	case "BETWEEN":
		return c.Column + " BETWEEN ? AND ?"
	case "LIKE":
		return c.Column + ` LIKE ? ESCAPE '\'`
	default:
		return c.Column + " " + c.op + " ?"
	}
}

// buildWhere validates conditions against the table's index columns and
// renders them as a WHERE clause joined by AND
func buildWhere(table Table, conds []Condition) (string, []interface{}, error) {
	cols, err := columnsOf(table)
	if err != nil {
		return "", nil, err
	}
	if len(conds) == 0 {
		return "", nil, nil
	}

	parts := make([]string, 0, len(conds))
	var args []interface{}
	for _, c := range conds {
		if c.Column != "id" && !contains(cols, c.Column) {
			return "", nil, fmt.Errorf("cannot filter %s on %q", table, c.Column)
		}
		if c.op == "" {
			return "", nil, fmt.Errorf("empty condition on %s.%s", table, c.Column)
		}
		parts = append(parts, c.sql())
		args = append(args, c.args...)
	}

	return " WHERE " + strings.Join(parts, " AND "), args, nil
}
