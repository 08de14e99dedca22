// Package schema declares the relational shape of repo_index.db: every
// table, its columns, indexes, and foreign keys, plus the SQL generator and
// typed query builder the storage writer and rule engine both depend on
// instead of hand-written column lists.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Column describes one table column.
type Column struct {
	Name     string
	Type     string // SQLite affinity: TEXT, INTEGER, REAL, BLOB
	Nullable bool
	Default  string // literal SQL default, empty for none
	PrimaryKey bool
}

// ForeignKey describes a REFERENCES clause with an optional cascade.
type ForeignKey struct {
	Column     string
	RefTable   string
	RefColumn  string
	OnDelete   string // "CASCADE", "SET NULL", "" for none
}

// Index describes a non-PK index.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Table is one entry in the registry.
type Table struct {
	Name        string
	Columns     []Column
	Indexes     []Index
	ForeignKeys []ForeignKey
	// DependsOn lists table names that must be created (and written) before
	// this one. Usually inferred from ForeignKeys but kept explicit for
	// tables that depend on a parent without a formal FK (e.g. join tables
	// added before the FK was tightened).
	DependsOn []string
}

// Registry is the full declarative schema.
type Registry struct {
	tables map[string]Table
	order  []string // insertion order, for stable iteration when order doesn't matter
}

// NewRegistry builds a registry from the built-in table catalogue
// (see tables.go). Callers needing to extend it for a one-off table can call
// Register directly.
func NewRegistry() *Registry {
	r := &Registry{tables: make(map[string]Table)}
	for _, t := range builtinTables {
		r.Register(t)
	}
	return r
}

// Register adds or replaces a table definition.
func (r *Registry) Register(t Table) {
	if _, exists := r.tables[t.Name]; !exists {
		r.order = append(r.order, t.Name)
	}
	r.tables[t.Name] = t
}

// Table looks up a table definition by name.
func (r *Registry) Table(name string) (Table, bool) {
	t, ok := r.tables[name]
	return t, ok
}

// TableNames returns every registered table name, FK-safe ordered (parents
// before children). Ties broken lexicographically for determinism.
func (r *Registry) TableNames() []string {
	return r.fkOrder()
}

// fkOrder performs a deterministic topological sort over DependsOn +
// ForeignKey.RefTable edges. A cycle is a registry bug, not a runtime
// condition, so it panics rather than returning an error.
func (r *Registry) fkOrder() []string {
	deps := make(map[string]map[string]bool, len(r.tables))
	for name, t := range r.tables {
		set := make(map[string]bool)
		for _, d := range t.DependsOn {
			set[d] = true
		}
		for _, fk := range t.ForeignKeys {
			if fk.RefTable != name {
				set[fk.RefTable] = true
			}
		}
		deps[name] = set
	}

	var names []string
	for n := range r.tables {
		names = append(names, n)
	}
	sort.Strings(names)

	visited := make(map[string]int) // 0=unvisited, 1=visiting, 2=done
	var out []string
	var visit func(string)
	visit = func(n string) {
		switch visited[n] {
		case 2:
			return
		case 1:
			panic(fmt.Sprintf("schema: dependency cycle involving table %q", n))
		}
		visited[n] = 1
		depNames := make([]string, 0, len(deps[n]))
		for d := range deps[n] {
			depNames = append(depNames, d)
		}
		sort.Strings(depNames)
		for _, d := range depNames {
			if _, ok := r.tables[d]; ok {
				visit(d)
			}
		}
		visited[n] = 2
		out = append(out, n)
	}
	for _, n := range names {
		visit(n)
	}
	return out
}

// GenerateSQL emits CREATE TABLE and CREATE INDEX statements in FK-safe
// order, deterministic across runs.
func (r *Registry) GenerateSQL() []string {
	var stmts []string
	for _, name := range r.fkOrder() {
		t := r.tables[name]
		stmts = append(stmts, t.createTableSQL())
		for _, idx := range t.Indexes {
			stmts = append(stmts, idx.createIndexSQL(t.Name))
		}
	}
	return stmts
}

func (t Table) createTableSQL() string {
	var cols []string
	var pk []string
	for _, c := range t.Columns {
		def := c.Name + " " + c.Type
		if !c.Nullable {
			def += " NOT NULL"
		}
		if c.Default != "" {
			def += " DEFAULT " + c.Default
		}
		cols = append(cols, def)
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	if len(pk) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pk, ", ")))
	}
	for _, fk := range t.ForeignKeys {
		clause := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)", fk.Column, fk.RefTable, fk.RefColumn)
		if fk.OnDelete != "" {
			clause += " ON DELETE " + fk.OnDelete
		}
		cols = append(cols, clause)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", t.Name, strings.Join(cols, ",\n\t"))
}

func (idx Index) createIndexSQL(table string) string {
	kind := "INDEX"
	if idx.Unique {
		kind = "UNIQUE INDEX"
	}
	return fmt.Sprintf("CREATE %s IF NOT EXISTS %s ON %s(%s)", kind, idx.Name, table, strings.Join(idx.Columns, ", "))
}

// ColumnNames returns the ordered column names for a table, used by the
// storage writer to build prepared-statement placeholders without
// re-deriving them from Go struct tags.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Verify checks that every FK target table/column actually exists in the
// registry. The storage writer calls this at startup and refuses to write
// if the live schema and registry have drifted (spec's "fail loud" contract
// for 4.A).
func (r *Registry) Verify() error {
	for name, t := range r.tables {
		for _, fk := range t.ForeignKeys {
			ref, ok := r.tables[fk.RefTable]
			if !ok {
				return fmt.Errorf("schema: table %q has FK to unknown table %q", name, fk.RefTable)
			}
			found := false
			for _, c := range ref.Columns {
				if c.Name == fk.RefColumn {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("schema: table %q FK references unknown column %s.%s", name, fk.RefTable, fk.RefColumn)
			}
		}
	}
	return nil
}
