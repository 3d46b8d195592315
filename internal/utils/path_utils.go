package utils

import (
	"path/filepath"
	"strings"
)

// ResolveImportPath resolves an import path relative to a base directory if it starts with a dot.
// Otherwise returns the import path as is.
func ResolveImportPath(baseDir, importPath string) string {
	if len(importPath) > 0 && importPath[0] == '.' {
		if baseDir != "." && baseDir != "" {
			return filepath.Join(baseDir, importPath)
		}
	}
	return importPath
}

// WithSourceExt appends ext unless path already ends with it.
func WithSourceExt(path, ext string) string {
	if ext == "" || strings.HasSuffix(path, ext) {
		return path
	}
	return path + ext
}

// ExtractModuleName derives a module name from a file path.
// It takes the base filename and removes the source extension.
func ExtractModuleName(path, ext string) string {
	return strings.TrimSuffix(filepath.Base(path), ext)
}
