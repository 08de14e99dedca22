package fidelity

import "sort"

// Status is the per-table reconciliation verdict.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// TableResult is the reconciliation outcome for one table.
type TableResult struct {
	Table    string
	Manifest int
	Receipt  int
	Status   Status
}

// Result is the full reconciliation outcome for one file's extraction.
type Result struct {
	File    string
	Tables  []TableResult
	Fatal   error // non-nil only in strict mode when a table lost 100% of its rows
}

// Reconcile compares an extraction manifest against a storage receipt for
// one file. For every table named in either map:
//   - manifest > 0 and receipt == 0 → StatusError (100% loss)
//   - manifest != receipt and both > 0 → StatusWarning
//   - otherwise → StatusOK
//
// strict=true (the default) returns a non-nil Result.Fatal (*Error,
// wrapping the first 100%-loss table found) the caller must treat as fatal
// corruption (spec.md §7). strict=false logs-and-continues: Fatal is
// always nil, only Status fields signal the problem.
func Reconcile(manifest, receipt map[string]int, filePath string, strict bool) Result {
	tableSet := make(map[string]bool)
	for t := range manifest {
		tableSet[t] = true
	}
	for t := range receipt {
		tableSet[t] = true
	}
	var tables []string
	for t := range tableSet {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	result := Result{File: filePath}
	for _, t := range tables {
		m := manifest[t]
		r := receipt[t]
		status := StatusOK
		switch {
		case m > 0 && r == 0:
			status = StatusError
		case m != r && m > 0 && r > 0:
			status = StatusWarning
		}
		result.Tables = append(result.Tables, TableResult{Table: t, Manifest: m, Receipt: r, Status: status})

		if status == StatusError && strict && result.Fatal == nil {
			result.Fatal = &Error{File: filePath, Table: t, Wanted: m, Got: r}
		}
	}
	return result
}

// HasErrors reports whether any table suffered 100% loss, independent of
// strict mode — used by non-strict callers who still want to log a
// warning summary.
func (r Result) HasErrors() bool {
	for _, t := range r.Tables {
		if t.Status == StatusError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any table had a partial mismatch.
func (r Result) HasWarnings() bool {
	for _, t := range r.Tables {
		if t.Status == StatusWarning {
			return true
		}
	}
	return false
}

// CheckTxID validates that manifest and receipt agree on the transaction
// ID. Mismatch is always fatal, independent of strict mode.
func CheckTxID(manifestTxID, receiptTxID string) error {
	if manifestTxID != receiptTxID {
		return &TxIDMismatchError{Manifest: manifestTxID, Receipt: receiptTxID}
	}
	return nil
}
