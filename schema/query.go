package schema

import (
	"fmt"
	"strings"
)

// BuildQuery assembles a typed SELECT against a registered table, guarding
// the rule engine against column-name drift: callers name columns that must
// exist in the registry, rather than hand-writing a query string that can
// silently skew from the live schema. An empty columns slice selects "*".
func (r *Registry) BuildQuery(table string, columns []string, where string, orderBy string) (string, error) {
	t, ok := r.Table(table)
	if !ok {
		return "", fmt.Errorf("schema: unknown table %q", table)
	}

	selectList := "*"
	if len(columns) > 0 {
		known := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			known[c.Name] = true
		}
		for _, c := range columns {
			if !known[c] {
				return "", fmt.Errorf("schema: column %q not declared on table %q", c, table)
			}
		}
		selectList = strings.Join(columns, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", selectList, table)
	if where != "" {
		fmt.Fprintf(&b, " WHERE %s", where)
	}
	if orderBy != "" {
		fmt.Fprintf(&b, " ORDER BY %s", orderBy)
	}
	return b.String(), nil
}
