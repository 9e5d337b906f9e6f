package export

import (
	"strconv"
	"strings"

	"github.com/bilgisen/zenstudio/internal/models"
)

var csvHeader = []string{
	"post_id",
	"platform",
	"title",
	"subtitle",
	"content",
	"date",
	"time",
	"status",
	"character_count",
	"word_count",
	"source",
	"checklist_item_id",
	"checklist_item_text",
	"checklist_item_completed",
	"checklist_item_source",
	"checklist_summary_completed",
	"checklist_summary_total",
}

// ToCSV renders one row per post and checklist item pair. A post without
// items still gets one row; unassigned items get rows with empty post
// columns. Every value is quoted.
func ToCSV(payload ExportPayload) string {
	rows := []string{strings.Join(csvHeader, ",")}

	for _, post := range payload.Posts {
		postCols := []string{
			post.ID,
			string(post.Platform),
			post.Title,
			post.Subtitle,
			post.Content,
			post.Date,
			post.Time,
			string(post.Status),
			strconv.Itoa(post.CharacterCount),
			strconv.Itoa(post.WordCount),
			string(post.Source),
		}
		summary := []string{
			strconv.Itoa(post.ChecklistSummary.Completed),
			strconv.Itoa(post.ChecklistSummary.Total),
		}

		if len(post.ChecklistItems) == 0 {
			rows = append(rows, csvRow(postCols, itemColumns(nil), summary))
			continue
		}
		for i := range post.ChecklistItems {
			rows = append(rows, csvRow(postCols, itemColumns(&post.ChecklistItems[i]), summary))
		}
	}

	emptyPost := make([]string, 11)
	emptySummary := make([]string, 2)
	for i := range payload.UnassignedChecklist {
		rows = append(rows, csvRow(emptyPost, itemColumns(&payload.UnassignedChecklist[i]), emptySummary))
	}

	return strings.Join(rows, "\n") + "\n"
}

func itemColumns(item *models.ChecklistItem) []string {
	if item == nil {
		return make([]string, 4)
	}
	return []string{
		item.ID,
		item.Text,
		strconv.FormatBool(item.Completed),
		string(item.Source),
	}
}

func csvRow(groups ...[]string) string {
	var cols []string
	for _, group := range groups {
		for _, v := range group {
			cols = append(cols, `"`+strings.ReplaceAll(v, `"`, `""`)+`"`)
		}
	}
	return strings.Join(cols, ",")
}
