package models

import "strings"

// ValidID reports whether id can be used as a file name segment. Ids that
// are empty, contain a path separator or a ".." sequence are rejected.
func ValidID(id string) bool {
	if id == "" || id == "." || strings.Contains(id, "..") {
		return false
	}
	return !strings.ContainsAny(id, "/\\\x00")
}
