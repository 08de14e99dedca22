// Package storage is the schema-driven SQLite writer: it ensures the live
// database matches the schema registry, accepts per-file record batches,
// inserts them in FK-dependency order inside one transaction per file, and
// returns a receipt the fidelity package reconciles against the
// extractor's manifest. Driver: modernc.org/sqlite (pure Go, no cgo),
// promoted here from the teacher's indirect dependency to the repo's one
// actual DB connection.
package storage

import (
	"database/sql"
	"fmt"

	"github.com/TheAuditorTool/auditor-core/schema"
	_ "modernc.org/sqlite"
)

// Open opens (creating if absent) a SQLite database at path, enables WAL
// mode for the single-writer/many-reader contract spec.md §5 requires, and
// ensures every table in reg exists.
func Open(path string, reg *schema.Registry) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: enable WAL on %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: enable foreign_keys on %s: %w", path, err)
	}
	if err := ensureSchema(db, reg); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// ensureSchema verifies the registry is internally consistent and creates
// any missing tables/indexes. It does not attempt to migrate a live schema
// that has drifted incompatibly — spec.md §4.A's "fail loud" contract is
// honored by Verify returning an error rather than silently ALTERing.
func ensureSchema(db *sql.DB, reg *schema.Registry) error {
	if err := reg.Verify(); err != nil {
		return fmt.Errorf("storage: registry invalid: %w", err)
	}
	for _, stmt := range reg.GenerateSQL() {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("storage: schema init: %w", err)
		}
	}
	return nil
}
