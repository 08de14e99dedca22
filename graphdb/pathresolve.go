package graphdb

import "strings"

// qualifiers are the framework-specific suffixes stripped before matching,
// so a TypeScript file like "auth.guard.ts" aligns with an import of
// "./guards/auth".
var qualifiers = []string{
	".guard", ".service", ".controller", ".interceptor", ".middleware",
	".module", ".entity", ".dto", ".resolver", ".strategy", ".pipe",
	".component", ".directive",
}

var extensions = []string{".ts", ".tsx", ".js", ".jsx", ".py"}

func cleanPath(p string) string {
	p = strings.ToLower(strings.ReplaceAll(p, "\\", "/"))
	for _, ext := range extensions {
		if strings.HasSuffix(p, ext) {
			p = p[:len(p)-len(ext)]
			break
		}
	}
	for _, q := range qualifiers {
		if strings.HasSuffix(p, q) {
			p = p[:len(p)-len(q)]
			break
		}
	}
	return p
}

// PathMatches reports whether importPackage resolves to symbolPath, ported
// directly from original_source/theauditor/graph/strategies/resolution.py's
// path_matches: qualifier-aware suffix matching with directory-boundary
// enforcement (so "auth" never matches "unauth") and an implicit
// "/index" retry for Node's directory-import convention.
func PathMatches(importPackage, symbolPath string) bool {
	if importPackage == "" || symbolPath == "" {
		return false
	}

	cleanImport := cleanPath(importPackage)
	cleanSymbol := cleanPath(symbolPath)

	cleanImport = strings.TrimPrefix(cleanImport, "@")

	var parts []string
	for _, p := range strings.Split(cleanImport, "/") {
		if p != "." && p != ".." && p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return false
	}
	fingerprint := strings.Join(parts, "/")

	if suffixMatchesAtBoundary(cleanSymbol, fingerprint) {
		return true
	}

	if strings.HasSuffix(cleanSymbol, "/index") {
		withoutIndex := cleanSymbol[:len(cleanSymbol)-len("/index")]
		if suffixMatchesAtBoundary(withoutIndex, fingerprint) {
			return true
		}
	}

	return false
}

func suffixMatchesAtBoundary(symbol, fingerprint string) bool {
	if !strings.HasSuffix(symbol, fingerprint) {
		return false
	}
	matchIndex := strings.LastIndex(symbol, fingerprint)
	return matchIndex == 0 || symbol[matchIndex-1] == '/'
}

// ResolveCandidates ties-break among multiple symbol paths that all
// PathMatches an import: shortest remaining path wins, lexicographic on
// exact tie, matching spec.md §4.F.1.
func ResolveCandidates(importPackage string, symbolPaths []string) string {
	best := ""
	for _, sp := range symbolPaths {
		if !PathMatches(importPackage, sp) {
			continue
		}
		switch {
		case best == "":
			best = sp
		case len(sp) < len(best):
			best = sp
		case len(sp) == len(best) && sp < best:
			best = sp
		}
	}
	return best
}
