package utils

import (
	"strings"
	"testing"
)

func TestHashIsStable(t *testing.T) {
	if Hash("abc") != Hash("abc") {
		t.Fatal("same input produced different hashes")
	}
	if len(Hash("abc")) != 64 {
		t.Errorf("hash length = %d, want 64", len(Hash("abc")))
	}
}

func TestProjectDirName(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		prefix string
	}{
		{"plain", "/home/me/blog", "blog_"},
		{"trailing slash", "/home/me/blog/", "blog_"},
		{"root", "/", "default_"},
		{"relative", "notes", "notes_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProjectDirName(tt.path)
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("ProjectDirName(%q) = %q, want prefix %q", tt.path, got, tt.prefix)
			}
			if len(got) != len(tt.prefix)+projectHashLength {
				t.Errorf("ProjectDirName(%q) = %q, unexpected length", tt.path, got)
			}
		})
	}
}

func TestProjectDirNameSeparatesSameFolderName(t *testing.T) {
	a := ProjectDirName("/work/site")
	b := ProjectDirName("/personal/site")
	if a == b {
		t.Fatalf("projects with the same folder name collided: %q", a)
	}
}
