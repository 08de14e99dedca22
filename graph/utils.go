package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

var verboseFlag bool

// GenerateMethodID generates a unique SHA256 hash ID for a method, keyed by
// name, parameter list, file, and declaration line so overloaded names in
// different scopes never collide.
func GenerateMethodID(methodName string, parameters []string, sourceFile string, lineNumber uint32) string {
	hashInput := fmt.Sprintf("%s-%s-%s-%d", methodName, parameters, sourceFile, lineNumber)
	hash := sha256.Sum256([]byte(hashInput))
	return hex.EncodeToString(hash[:])
}

// GenerateSha256 generates a SHA256 hash from an input string.
func GenerateSha256(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

// FormatType formats various types to string representation.
func FormatType(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case int, int64:
		return fmt.Sprintf("%d", val)
	case float32, float64:
		return fmt.Sprintf("%.2f", val)
	case []interface{}:
		//nolint:all
		jsonBytes, _ := json.Marshal(val)
		return string(jsonBytes)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// EnableVerboseLogging enables verbose logging mode.
func EnableVerboseLogging() {
	verboseFlag = true
}

// Log logs a message if verbose logging is enabled.
func Log(message string, args ...interface{}) {
	if verboseFlag {
		log.Println(message, args)
	}
}

// Fmt prints formatted output if verbose logging is enabled.
func Fmt(format string, args ...interface{}) {
	if verboseFlag {
		fmt.Printf(format, args...)
	}
}

// IsGitHubActions checks if running in GitHub Actions environment.
func IsGitHubActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// extractVisibilityModifier extracts visibility modifier from a string of modifiers.
func extractVisibilityModifier(modifiers string) string {
	words := strings.Fields(modifiers)
	for _, word := range words {
		switch word {
		case "public", "private", "protected":
			return word
		}
	}
	return "" // return an empty string if no visibility modifier is found
}

// isPythonSourceFile checks if a file is a Python source file.
func isPythonSourceFile(filename string) bool {
	return filepath.Ext(filename) == ".py"
}

// isJSOrTSFile checks if a file is a JavaScript or TypeScript source file.
func isJSOrTSFile(filename string) bool {
	switch filepath.Ext(filename) {
	case ".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx":
		return true
	}
	return false
}

//nolint:all
func hasAccess(node *sitter.Node, variableName string, sourceCode []byte) bool {
	if node == nil {
		return false
	}
	if node.Type() == "identifier" && node.Content(sourceCode) == variableName {
		return true
	}

	// Recursively check all children of the current node
	for i := 0; i < int(node.ChildCount()); i++ {
		childNode := node.Child(i)
		if hasAccess(childNode, variableName, sourceCode) {
			return true
		}
	}

	// Continue checking in the next sibling
	return hasAccess(node.NextSibling(), variableName, sourceCode)
}

// getFiles walks a directory and returns all Python and JavaScript/TypeScript
// source files under it.
func getFiles(directory string) ([]string, error) {
	var files []string
	err := filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && (isPythonSourceFile(path) || isJSOrTSFile(path)) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// readFile reads the contents of a file.
func readFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return content, nil
}
