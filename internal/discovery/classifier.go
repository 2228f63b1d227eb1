package discovery

import (
	"path/filepath"
	"strings"
)

// IsSQLFile reports whether filename has a .sql extension (case-insensitive)
func IsSQLFile(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".sql")
}

// ClassifyFile determines if a script applies or reverts changes based on naming convention
func ClassifyFile(filename string) FileType {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".down.sql") || strings.HasSuffix(lower, "_down.sql") {
		return FileTypeDown
	}
	return FileTypeUp
}

// ClassifyPath determines file type from a full path
func ClassifyPath(path string) FileType {
	return ClassifyFile(filepath.Base(path))
}
