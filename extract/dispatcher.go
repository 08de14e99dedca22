package extract

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/TheAuditorTool/auditor-core/fileindex"
	"github.com/google/uuid"
)

// FileInfo is the minimal per-file metadata the dispatcher needs; the
// caller (the indexing orchestrator) owns reading it off disk.
type FileInfo struct {
	Path string
}

// Dispatcher routes a file to the right language extractor and enforces
// the "hard per-file fail" contract: a parse error or panic produces an
// empty Batches plus an extraction_errors row, never a partial one
// (spec.md §4.C).
type Dispatcher struct{}

// NewDispatcher constructs a Dispatcher. It carries no state today, but is
// a type (not a free function) so future per-run configuration — a
// language allowlist, a deterministic clock for tests — has somewhere to
// live without changing every call site.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// languageFor maps a file extension to the extractor language tag.
func languageFor(path string) (string, bool) {
	switch filepath.Ext(path) {
	case ".py":
		return "python", true
	case ".js", ".jsx", ".mjs", ".cjs":
		return "javascript", true
	case ".ts", ".tsx":
		return "typescript", true
	default:
		return "", false
	}
}

// Dispatch parses content, builds a FileContext, and runs the
// language-appropriate extractor. On any failure — unsupported extension,
// parse error, or a recovered panic from a topic extractor — it returns an
// empty Batches and a manifest whose counts are all zero, with the error
// value describing what went wrong so the caller can append an
// extraction_errors row.
func (d *Dispatcher) Dispatch(ctx context.Context, info FileInfo, content []byte) (batches Batches, manifest Manifest, err error) {
	txID := uuid.NewString()
	batches = make(Batches)

	defer func() {
		if r := recover(); r != nil {
			batches = make(Batches)
			err = fmt.Errorf("extract: panic processing %s: %v", info.Path, r)
		}
		manifest = CountOf(txID, batches)
	}()

	language, ok := languageFor(info.Path)
	if !ok {
		return batches, manifest, fmt.Errorf("extract: unsupported file type %s", info.Path)
	}

	fc, ferr := fileindex.NewFileContext(ctx, normalizeSlashes(info.Path), language, content)
	if ferr != nil {
		return batches, manifest, fmt.Errorf("extract: %w", ferr)
	}
	defer fc.Close()

	switch language {
	case "python":
		batches = extractPython(fc)
	case "javascript", "typescript":
		batches = extractJavaScript(fc)
	}

	return batches, manifest, nil
}

func normalizeSlashes(path string) string {
	out := make([]byte, len(path))
	for i := 0; i < len(path); i++ {
		if path[i] == '\\' {
			out[i] = '/'
		} else {
			out[i] = path[i]
		}
	}
	return string(out)
}
