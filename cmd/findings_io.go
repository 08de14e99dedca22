package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TheAuditorTool/auditor-core/rules"
)

// rawDir is where intermediate, stage-local finding sets live before
// detect-patterns consolidates them, per spec.md §6's .pf/raw/ layout.
func rawDir(root string) string {
	return filepath.Join(pfRoot(root), "raw")
}

// writeFindings persists a finding set as JSON under .pf/raw/<name>.json.
func writeFindings(root, name string, findings []rules.Finding) error {
	if err := os.MkdirAll(rawDir(root), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	data, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	path := filepath.Join(rawDir(root), name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// readFindings loads a previously written finding set, returning an empty
// slice (not an error) if the file doesn't exist yet - taint-analyze is an
// optional stage ahead of detect-patterns, not a required one.
func readFindings(root, name string) ([]rules.Finding, error) {
	path := filepath.Join(rawDir(root), name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	var findings []rules.Finding
	if err := json.Unmarshal(data, &findings); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return findings, nil
}
