package storage

import "strings"

// NormalizePath rewrites backslashes to forward slashes, per spec.md §3's
// invariant that every file/file_path/src_path/callee_file_path column is
// forward-slash normalized at the writer boundary.
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// normalizeRecordPaths rewrites every value whose column name matches a
// known path column, leaving other values untouched.
var pathColumns = map[string]bool{
	"file": true, "file_path": true, "src_path": true,
	"callee_file_path": true, "path": true,
}

func normalizeRecordPaths(rec map[string]any) {
	for k, v := range rec {
		if !pathColumns[k] {
			continue
		}
		if s, ok := v.(string); ok {
			rec[k] = NormalizePath(s)
		}
	}
}
