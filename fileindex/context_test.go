package fileindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileContextPython(t *testing.T) {
	src := []byte(`
import os
from flask import Flask as App

def handler(request):
    q = request.args.get('q')
    return q
`)
	fc, err := NewFileContext(context.Background(), "app.py", "python", src)
	require.NoError(t, err)
	defer fc.Close()

	funcs := fc.FindNodes(KindFunctionDef)
	require.Len(t, funcs, 1)

	ranges := fc.FunctionRanges()
	require.Len(t, ranges, 1)
	assert.Equal(t, "handler", ranges[0].Name)

	sym := fc.ResolveSymbol("App", 3)
	require.NotNil(t, sym)
	assert.Equal(t, "import", sym.Kind)
	assert.Equal(t, "flask.Flask", sym.ImportFrom)

	sym2 := fc.ResolveSymbol("handler", 6)
	require.NotNil(t, sym2)
	assert.Equal(t, "function", sym2.Kind)
}

func TestNewFileContextUnsupportedLanguage(t *testing.T) {
	_, err := NewFileContext(context.Background(), "x.rb", "ruby", []byte("puts 1"))
	assert.Error(t, err)
}

func TestFindNodesUsesIndexNotReWalk(t *testing.T) {
	src := []byte("def a():\n    pass\ndef b():\n    pass\n")
	fc, err := NewFileContext(context.Background(), "m.py", "python", src)
	require.NoError(t, err)
	defer fc.Close()

	assert.Len(t, fc.FindNodes(KindFunctionDef), 2)
	assert.Empty(t, fc.FindNodes(KindClassDef))
}
