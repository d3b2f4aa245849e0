package sync

import (
	"fmt"
	"strings"

	"github.com/xelth-com/maintdesk/internal/localstore"
)

// cond is an equality filter on a snake_case column that exists both as a
// remote column and as a local index column
type cond struct {
	column string
	value  interface{}
}

type filter []cond

func where(pairs ...interface{}) filter {
	f := make(filter, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		f = append(f, cond{column: pairs[i].(string), value: pairs[i+1]})
	}
	return f
}

// signature renders the filter for cache keys; "all" when empty
func (f filter) signature() string {
	if len(f) == 0 {
		return "all"
	}
	parts := make([]string, len(f))
	for i, c := range f {
		parts[i] = fmt.Sprintf("%s=%v", c.column, c.value)
	}
	return strings.Join(parts, ",")
}

func (f filter) remote() map[string]interface{} {
	if len(f) == 0 {
		return nil
	}
	m := make(map[string]interface{}, len(f))
	for _, c := range f {
		m[c.column] = c.value
	}
	return m
}

func (f filter) local() []localstore.Condition {
	conds := make([]localstore.Condition, len(f))
	for i, c := range f {
		conds[i] = localstore.Eq(c.column, c.value)
	}
	return conds
}

func cacheKey(entity EntityType, f filter) string {
	return string(entity) + ":" + f.signature()
}
