// Package fidelity implements the manifest/receipt reconciliation
// ("Transaction Contract") that prevents the Silent Omission failure mode:
// an extractor reporting success while storage dropped rows before
// persistence. Ported in spirit from
// original_source/theauditor/indexer/fidelity.py's reconcile_fidelity.
package fidelity

import "fmt"

// Error is returned by Reconcile in strict mode when any table suffered
// 100% data loss (manifest > 0, receipt == 0).
type Error struct {
	File   string
	Table  string
	Wanted int
	Got    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("fidelity: %s: table %q lost all %d extracted rows (receipt=0)", e.File, e.Table, e.Wanted)
}

// TxIDMismatchError is returned when the manifest and receipt disagree on the
// transaction ID, indicating a serialization bug between extraction and
// storage. Fatal regardless of strict mode.
type TxIDMismatchError struct {
	Manifest string
	Receipt  string
}

func (e *TxIDMismatchError) Error() string {
	return fmt.Sprintf("fidelity: tx_id mismatch: manifest=%s receipt=%s", e.Manifest, e.Receipt)
}
