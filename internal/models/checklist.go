package models

import "time"

// ChecklistSource tells where a checklist item came from.
type ChecklistSource string

const (
	SourceDefault ChecklistSource = "default"
	SourceCustom  ChecklistSource = "custom"
)

// ChecklistItem is one workflow task. An empty PostID means the item is global.
type ChecklistItem struct {
	ID        string          `json:"id"`
	Text      string          `json:"text" validate:"required"`
	Completed bool            `json:"completed"`
	Source    ChecklistSource `json:"source" validate:"omitempty,oneof=default custom"`
	PostID    string          `json:"postId,omitempty"`
}

// ChecklistRecord is the persisted checklist of one project.
type ChecklistRecord struct {
	Items     []ChecklistItem `json:"items"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
