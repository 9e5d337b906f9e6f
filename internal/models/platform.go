package models

import (
	"fmt"
	"strings"
)

// Platform is a publishing channel a post is written for.
type Platform string

const (
	PlatformLinkedIn Platform = "linkedin"
	PlatformReddit   Platform = "reddit"
	PlatformGitHub   Platform = "github"
	PlatformDevTo    Platform = "devto"
	PlatformMedium   Platform = "medium"
	PlatformHashnode Platform = "hashnode"
	PlatformTwitter  Platform = "twitter"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{
	PlatformLinkedIn,
	PlatformReddit,
	PlatformGitHub,
	PlatformDevTo,
	PlatformMedium,
	PlatformHashnode,
	PlatformTwitter,
}

// ParsePlatform converts a raw key into a Platform. Keys are case-insensitive.
func ParsePlatform(raw string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown platform %q", raw)
	}
	return p, nil
}

// Valid reports whether p is one of the known platforms.
func (p Platform) Valid() bool {
	switch p {
	case PlatformLinkedIn, PlatformReddit, PlatformGitHub, PlatformDevTo,
		PlatformMedium, PlatformHashnode, PlatformTwitter:
		return true
	}
	return false
}

// DisplayName returns the human readable platform name.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformLinkedIn:
		return "LinkedIn"
	case PlatformReddit:
		return "Reddit"
	case PlatformGitHub:
		return "GitHub"
	case PlatformDevTo:
		return "Dev.to"
	case PlatformMedium:
		return "Medium"
	case PlatformHashnode:
		return "Hashnode"
	case PlatformTwitter:
		return "Twitter"
	}
	// unreachable for values that passed ParsePlatform or UnmarshalText
	return string(p)
}

func (p Platform) String() string { return string(p) }

// MarshalText implements encoding.TextMarshaler.
func (p Platform) MarshalText() ([]byte, error) {
	return []byte(p), nil
}

// UnmarshalText rejects unknown platform keys so that a decoded value is
// always one of the constants above.
func (p *Platform) UnmarshalText(text []byte) error {
	parsed, err := ParsePlatform(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
