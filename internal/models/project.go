package models

import "time"

// ConfigVersion is the schema version written into new project configs.
const ConfigVersion = "1.0.0"

// RecentProjectsLimit caps ProjectConfig.RecentProjectPaths.
const RecentProjectsLimit = 8

// ProjectConfig is the single per-installation config record.
type ProjectConfig struct {
	Version                string    `json:"version"`
	LastProjectPath        string    `json:"lastProjectPath"`
	RecentProjectPaths     []string  `json:"recentProjectPaths"`
	HasSeenBootstrapNotice bool      `json:"hasSeenBootstrapNotice"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}
