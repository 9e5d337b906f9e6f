package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

const projectHashLength = 12

// Hash generates a SHA-256 hash of the input string
func Hash(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}

// ProjectDirName derives the per-project data directory name from a project
// path: the last path segment plus a short hash of the full path, so two
// projects with the same folder name never share a directory.
func ProjectDirName(projectPath string) string {
	cleaned := strings.TrimRight(filepath.ToSlash(projectPath), "/")
	name := cleaned
	if i := strings.LastIndex(cleaned, "/"); i >= 0 {
		name = cleaned[i+1:]
	}
	if name == "" {
		name = "default"
	}
	return name + "_" + Hash(projectPath)[:projectHashLength]
}
