package checklist

import (
	"fmt"
	"strings"

	"github.com/bilgisen/zenstudio/internal/metrics"
	"github.com/bilgisen/zenstudio/internal/models"
)

var globalTasks = []string{
	"Content written and reviewed",
	"Spelling and links checked",
	"Images and assets prepared",
	"Post files saved to the project",
	"Schedule confirmed",
}

func platformTasks(p models.Platform) []string {
	switch p {
	case models.PlatformLinkedIn:
		return []string{
			"Hook sits in the first two lines",
			"Paragraphs and whitespace work on mobile",
			"Low-pressure call to action added",
			"3-5 relevant hashtags",
			"1-2 keywords spread through the text",
			"Optional: first comment prepared",
		}
	case models.PlatformReddit:
		return []string{
			"Subreddit rules read",
			"Title is not clickbait",
			"Markdown formatting checked",
			"No self-promotion without context",
		}
	case models.PlatformGitHub:
		return []string{
			"README and changelog updated",
			"Screenshots and GIFs checked",
			"Release notes drafted",
			"Docs and wiki links checked",
		}
	case models.PlatformDevTo:
		return []string{
			"Frontmatter set",
			"Code blocks formatted",
			"At most 4 meaningful tags",
		}
	case models.PlatformMedium:
		return []string{
			"Title and subtitle are clear",
			"Section headings set",
			"Preview excerpt fits",
		}
	case models.PlatformHashnode:
		return []string{
			"Tags and cover image set",
			"Canonical URL checked",
		}
	case models.PlatformTwitter:
		return []string{
			"Short and clear hook",
			"Thread structure if needed",
			"Link with optional UTM",
		}
	}
	return nil
}

// TasksForPlatform returns the global tasks followed by the platform's own,
// without duplicates. An empty platform returns the global tasks only.
func TasksForPlatform(p models.Platform) []string {
	tasks := make([]string, 0, len(globalTasks)+8)
	seen := make(map[string]bool)
	for _, list := range [][]string{globalTasks, platformTasks(p)} {
		for _, task := range list {
			if seen[task] {
				continue
			}
			seen[task] = true
			tasks = append(tasks, task)
		}
	}
	return tasks
}

// FormatMarkdown renders items as a task list under a heading.
func FormatMarkdown(items []models.ChecklistItem, title string) string {
	if title == "" {
		title = "Checklist"
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		mark := " "
		if item.Completed {
			mark = "x"
		}
		lines = append(lines, "- ["+mark+"] "+item.Text)
	}
	return "# " + title + "\n\n" + strings.Join(lines, "\n") + "\n"
}

// FormatCSV renders items as status,task rows.
func FormatCSV(items []models.ChecklistItem) string {
	var b strings.Builder
	b.WriteString("status,task\n")
	for _, item := range items {
		status := "open"
		if item.Completed {
			status = "done"
		}
		b.WriteString(status + `,"` + strings.ReplaceAll(item.Text, `"`, `""`) + "\"\n")
	}
	return b.String()
}

// Document is a checklist rendered for download.
type Document struct {
	Data        []byte
	Extension   string
	ContentType string
}

// FileName returns the download name of the document.
func (d Document) FileName() string {
	return DefaultSheetTitle + "." + d.Extension
}

// Render renders items as "markdown", "csv" or "xlsx".
func Render(format string, items []models.ChecklistItem, title string) (Document, error) {
	var (
		doc Document
		err error
	)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "markdown", "md":
		format = "markdown"
		doc = Document{Data: []byte(FormatMarkdown(items, title)), Extension: "md", ContentType: "text/markdown; charset=utf-8"}
	case "csv":
		format = "csv"
		doc = Document{Data: []byte(FormatCSV(items)), Extension: "csv", ContentType: "text/csv; charset=utf-8"}
	case "xlsx":
		format = "xlsx"
		doc = Document{Extension: "xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}
		doc.Data, err = FormatXLSX(items, title)
	default:
		return Document{}, fmt.Errorf("unknown checklist format %q", format)
	}
	metrics.Exported("checklist_"+format, len(doc.Data), err)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}
