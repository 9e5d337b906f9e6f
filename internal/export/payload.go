package export

import (
	"time"

	"github.com/bilgisen/zenstudio/internal/models"
)

// PayloadVersion is the schema version of ExportPayload.
const PayloadVersion = "1.0.0"

// PostSource tells where an exported post came from.
type PostSource string

const (
	SourceContent   PostSource = "content"
	SourceManual    PostSource = "manual"
	SourceScheduled PostSource = "scheduled"
)

type ChecklistSummary struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

type ExportPost struct {
	ID               string                 `json:"id"`
	Platform         models.Platform        `json:"platform"`
	Title            string                 `json:"title"`
	Subtitle         string                 `json:"subtitle,omitempty"`
	Content          string                 `json:"content"`
	Date             string                 `json:"date,omitempty"`
	Time             string                 `json:"time,omitempty"`
	Status           models.Status          `json:"status"`
	CharacterCount   int                    `json:"characterCount"`
	WordCount        int                    `json:"wordCount"`
	Source           PostSource             `json:"source"`
	ChecklistSummary ChecklistSummary       `json:"checklistSummary"`
	ChecklistItems   []models.ChecklistItem `json:"checklistItems"`
}

// ExportPayload is the format independent export model. It is built per
// export and never persisted.
type ExportPayload struct {
	Version             string                 `json:"version"`
	GeneratedAt         time.Time              `json:"generatedAt"`
	ProjectPath         string                 `json:"projectPath,omitempty"`
	Posts               []ExportPost           `json:"posts"`
	UnassignedChecklist []models.ChecklistItem `json:"unassignedChecklist"`
}

type PostInput struct {
	ID             string          `json:"id" validate:"required"`
	Platform       models.Platform `json:"platform" validate:"required,platform"`
	Title          string          `json:"title"`
	Subtitle       string          `json:"subtitle,omitempty"`
	Content        string          `json:"content"`
	CharacterCount int             `json:"characterCount" validate:"gte=0"`
	WordCount      int             `json:"wordCount" validate:"gte=0"`
	Source         PostSource      `json:"source" validate:"omitempty,oneof=content manual scheduled"`
}

type PayloadInput struct {
	Posts []PostInput `json:"posts" validate:"dive"`
	// Schedules is keyed by post id.
	Schedules      map[string]models.ScheduleEntry `json:"schedules"`
	ChecklistItems []models.ChecklistItem          `json:"checklistItems" validate:"dive"`
	ProjectPath    string                          `json:"projectPath,omitempty"`
	GeneratedAt    time.Time                       `json:"-"`
}

// BuildPayload groups checklist items by post and resolves every post's
// status from its schedule entry. It accepts any input, including nil
// slices and maps.
func BuildPayload(in PayloadInput) ExportPayload {
	generatedAt := in.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	unassigned := []models.ChecklistItem{}
	byPost := make(map[string][]models.ChecklistItem)
	for _, item := range in.ChecklistItems {
		if item.PostID == "" {
			unassigned = append(unassigned, item)
			continue
		}
		byPost[item.PostID] = append(byPost[item.PostID], item)
	}

	posts := make([]ExportPost, 0, len(in.Posts))
	for _, p := range in.Posts {
		entry := in.Schedules[p.ID]
		status := models.StatusDraft
		if entry.Date != "" && entry.Time != "" {
			status = models.StatusScheduled
		}

		items := byPost[p.ID]
		if items == nil {
			items = []models.ChecklistItem{}
		}
		completed := 0
		for _, item := range items {
			if item.Completed {
				completed++
			}
		}

		source := p.Source
		if source == "" {
			source = SourceContent
		}

		posts = append(posts, ExportPost{
			ID:               p.ID,
			Platform:         p.Platform,
			Title:            p.Title,
			Subtitle:         p.Subtitle,
			Content:          p.Content,
			Date:             entry.Date,
			Time:             entry.Time,
			Status:           status,
			CharacterCount:   p.CharacterCount,
			WordCount:        p.WordCount,
			Source:           source,
			ChecklistSummary: ChecklistSummary{Completed: completed, Total: len(items)},
			ChecklistItems:   items,
		})
	}

	return ExportPayload{
		Version:             PayloadVersion,
		GeneratedAt:         generatedAt,
		ProjectPath:         in.ProjectPath,
		Posts:               posts,
		UnassignedChecklist: unassigned,
	}
}

// FromSchedule converts stored posts into payload posts and their schedule
// entries.
func FromSchedule(scheduled []models.ScheduledPost) ([]PostInput, map[string]models.ScheduleEntry) {
	posts := make([]PostInput, 0, len(scheduled))
	schedules := make(map[string]models.ScheduleEntry, len(scheduled))
	for _, p := range scheduled {
		posts = append(posts, PostInput{
			ID:             p.ID,
			Platform:       p.Platform,
			Title:          p.Title,
			Subtitle:       p.Subtitle,
			Content:        p.Content,
			CharacterCount: p.CharacterCount,
			WordCount:      p.WordCount,
			Source:         SourceScheduled,
		})
		schedules[p.ID] = models.ScheduleEntry{Date: p.DateString(), Time: p.ScheduledTime}
	}
	return posts, schedules
}
