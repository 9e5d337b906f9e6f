package export

import (
	"fmt"
	"strings"

	"github.com/bilgisen/zenstudio/internal/models"
)

const placeholder = "-"

// ToMarkdown renders one section per post followed by the unassigned tasks.
func ToMarkdown(payload ExportPayload) string {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("# ZenStudio Export")
	add("")
	add("Generated: %s", models.FormatTimestamp(payload.GeneratedAt))
	add("Posts: %d", len(payload.Posts))
	add("")

	for _, post := range payload.Posts {
		add("## %s", postHeading(post))
		if post.Subtitle != "" {
			add("**Subtitle:** %s", post.Subtitle)
		}
		add("**Status:** %s", post.Status)
		add("**Date:** %s  **Time:** %s", orPlaceholder(post.Date), orPlaceholder(post.Time))
		add("**Characters:** %d  **Words:** %d", post.CharacterCount, post.WordCount)
		add("**Checklist:** %d/%d", post.ChecklistSummary.Completed, post.ChecklistSummary.Total)
		add("")
		add("### Content")
		add("")
		lines = append(lines, orPlaceholder(post.Content))
		add("")
		add("### Checklist")
		add("")
		if len(post.ChecklistItems) == 0 {
			add("- (no tasks)")
		}
		for _, item := range post.ChecklistItems {
			lines = append(lines, taskLine(item))
		}
		add("")
	}

	if len(payload.UnassignedChecklist) > 0 {
		add("## Unassigned tasks")
		add("")
		for _, item := range payload.UnassignedChecklist {
			lines = append(lines, taskLine(item))
		}
		add("")
	}

	return strings.Join(lines, "\n") + "\n"
}

func postHeading(post ExportPost) string {
	title := post.Title
	if title == "" {
		title = "Post"
	}
	return post.Platform.DisplayName() + " · " + title
}

func taskLine(item models.ChecklistItem) string {
	mark := " "
	if item.Completed {
		mark = "x"
	}
	return "- [" + mark + "] " + item.Text
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
