package fidelity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileOK(t *testing.T) {
	manifest := map[string]int{"symbols": 3, "refs": 0}
	receipt := map[string]int{"symbols": 3, "refs": 0}
	result := Reconcile(manifest, receipt, "a.py", true)
	assert.False(t, result.HasErrors())
	assert.False(t, result.HasWarnings())
	assert.NoError(t, result.Fatal)
}

func TestReconcileTotalLossStrict(t *testing.T) {
	manifest := map[string]int{"symbols": 5}
	receipt := map[string]int{"symbols": 0}
	result := Reconcile(manifest, receipt, "b.py", true)
	require.Error(t, result.Fatal)
	var fidelityErr *Error
	assert.ErrorAs(t, result.Fatal, &fidelityErr)
	assert.Equal(t, "symbols", fidelityErr.Table)
}

func TestReconcileTotalLossNonStrict(t *testing.T) {
	manifest := map[string]int{"symbols": 5}
	receipt := map[string]int{"symbols": 0}
	result := Reconcile(manifest, receipt, "b.py", false)
	assert.NoError(t, result.Fatal)
	assert.True(t, result.HasErrors())
}

func TestReconcilePartialMismatchWarns(t *testing.T) {
	manifest := map[string]int{"refs": 10}
	receipt := map[string]int{"refs": 8}
	result := Reconcile(manifest, receipt, "c.py", true)
	assert.NoError(t, result.Fatal)
	assert.True(t, result.HasWarnings())
}

func TestCheckTxIDMismatch(t *testing.T) {
	err := CheckTxID("abc", "def")
	require.Error(t, err)
	var mismatch *TxIDMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestCheckTxIDMatch(t *testing.T) {
	assert.NoError(t, CheckTxID("abc", "abc"))
}
