package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Status is the publishing state of a scheduled post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
)

// ScheduledPost is one platform-specific post tracked by the schedule.
type ScheduledPost struct {
	ID             string     `json:"id" validate:"required,fileid"`
	Platform       Platform   `json:"platform" validate:"required,platform"`
	Title          string     `json:"title"`
	Subtitle       string     `json:"subtitle,omitempty"`
	Content        string     `json:"content"`
	ScheduledDate  *time.Time `json:"scheduledDate,omitempty"`
	ScheduledTime  string     `json:"scheduledTime,omitempty" validate:"omitempty,clock"`
	Status         Status     `json:"status" validate:"omitempty,oneof=draft scheduled published failed"`
	CharacterCount int        `json:"characterCount" validate:"gte=0"`
	WordCount      int        `json:"wordCount" validate:"gte=0"`
	CreatedAt      time.Time  `json:"createdAt"`
	SeriesID       string     `json:"seriesId,omitempty"`
}

type scheduledPostFields ScheduledPost

// MarshalJSON writes dates as ISO-8601 strings.
func (p ScheduledPost) MarshalJSON() ([]byte, error) {
	wire := struct {
		scheduledPostFields
		ScheduledDate string `json:"scheduledDate,omitempty"`
		CreatedAt     string `json:"createdAt"`
	}{
		scheduledPostFields: scheduledPostFields(p),
		CreatedAt:           FormatTimestamp(p.CreatedAt),
	}
	if p.ScheduledDate != nil {
		wire.ScheduledDate = FormatTimestamp(*p.ScheduledDate)
	}
	return json.Marshal(wire)
}

// UnmarshalJSON parses ISO-8601 date strings back into time values. Absent or
// unparseable scheduled dates decode to nil; a missing createdAt becomes now.
func (p *ScheduledPost) UnmarshalJSON(data []byte) error {
	var wire struct {
		scheduledPostFields
		ScheduledDate *string `json:"scheduledDate"`
		CreatedAt     *string `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*p = ScheduledPost(wire.scheduledPostFields)
	p.ScheduledDate = nil
	if wire.ScheduledDate != nil {
		if t, ok := ParseDate(*wire.ScheduledDate); ok {
			p.ScheduledDate = &t
		}
	}
	p.CreatedAt = time.Now()
	if wire.CreatedAt != nil {
		if t, ok := ParseDate(*wire.CreatedAt); ok {
			p.CreatedAt = t
		}
	}
	return nil
}

// HasSchedule reports whether both the date and the time are set.
func (p ScheduledPost) HasSchedule() bool {
	return p.ScheduledDate != nil && strings.TrimSpace(p.ScheduledTime) != ""
}

// ResolveStatus derives draft/scheduled from the date and time fields.
// Published and failed are terminal and never inferred.
func (p *ScheduledPost) ResolveStatus() {
	switch p.Status {
	case StatusPublished, StatusFailed:
		return
	}
	if p.HasSchedule() {
		p.Status = StatusScheduled
	} else {
		p.Status = StatusDraft
	}
}

// DateString returns the scheduled date as YYYY-MM-DD, or "".
func (p ScheduledPost) DateString() string {
	if p.ScheduledDate == nil {
		return ""
	}
	return p.ScheduledDate.Format(time.DateOnly)
}

// PostPatch is a partial update. Nil fields are left untouched; an empty
// ScheduledDate string clears the date.
type PostPatch struct {
	Platform       *Platform `json:"platform,omitempty" validate:"omitempty,platform"`
	Title          *string   `json:"title,omitempty"`
	Subtitle       *string   `json:"subtitle,omitempty"`
	Content        *string   `json:"content,omitempty"`
	ScheduledDate  *string   `json:"scheduledDate,omitempty"`
	ScheduledTime  *string   `json:"scheduledTime,omitempty"`
	Status         *Status   `json:"status,omitempty" validate:"omitempty,oneof=draft scheduled failed"`
	CharacterCount *int      `json:"characterCount,omitempty" validate:"omitempty,gte=0"`
	WordCount      *int      `json:"wordCount,omitempty" validate:"omitempty,gte=0"`
	SeriesID       *string   `json:"seriesId,omitempty"`
}

// Apply merges the patch into p. A published status is ignored; only
// archiving publishes a post.
func (patch PostPatch) Apply(p *ScheduledPost) {
	if patch.Platform != nil {
		p.Platform = *patch.Platform
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Subtitle != nil {
		p.Subtitle = *patch.Subtitle
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.ScheduledDate != nil {
		p.ScheduledDate = nil
		if t, ok := ParseDate(*patch.ScheduledDate); ok {
			p.ScheduledDate = &t
		}
	}
	if patch.ScheduledTime != nil {
		p.ScheduledTime = *patch.ScheduledTime
	}
	if patch.Status != nil && *patch.Status != StatusPublished {
		p.Status = *patch.Status
	}
	if patch.CharacterCount != nil {
		p.CharacterCount = *patch.CharacterCount
	}
	if patch.WordCount != nil {
		p.WordCount = *patch.WordCount
	}
	if patch.SeriesID != nil {
		p.SeriesID = *patch.SeriesID
	}
}

// ScheduleRecord is the persisted schedule of one project.
type ScheduleRecord struct {
	Posts       []ScheduledPost `json:"posts"`
	ProjectPath string          `json:"projectPath"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// PlatformPost is generated platform content that has not been scheduled yet.
type PlatformPost struct {
	Platform       Platform `json:"platform" validate:"required,platform"`
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	CharacterCount int      `json:"characterCount"`
	WordCount      int      `json:"wordCount"`
}

// ScheduleEntry is a date/time pair chosen for a post or platform.
type ScheduleEntry struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// ScheduleStats summarises a schedule.
type ScheduleStats struct {
	Total          int              `json:"total"`
	Scheduled      int              `json:"scheduled"`
	Drafts         int              `json:"drafts"`
	Published      int              `json:"published"`
	PlatformCounts map[Platform]int `json:"platformCounts"`
	CanExport      bool             `json:"canExport"`
}

// TextStats counts characters and whitespace separated words.
func TextStats(content string) (characters, words int) {
	return utf8.RuneCountInString(content), len(strings.Fields(content))
}

// FormatTimestamp renders t as an ISO-8601 string.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseDate accepts RFC 3339 timestamps and bare YYYY-MM-DD dates.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseClock parses an "HH:MM" wall clock time.
func ParseClock(s string) (hour, minute int, ok bool) {
	h, m, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// ValidClock reports whether s is an "HH:MM" time.
func ValidClock(s string) bool {
	_, _, ok := ParseClock(s)
	return ok
}
