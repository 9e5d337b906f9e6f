package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/bilgisen/zenstudio/internal/metrics"
	"github.com/bilgisen/zenstudio/internal/models"
)

// Format is a rendering of ExportPayload or of the calendar.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatPDF      Format = "pdf"
	FormatCalendar Format = "calendar"
)

// ParseFormat accepts a format name or its file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "pdf":
		return FormatPDF, nil
	case "calendar", "ics":
		return FormatCalendar, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatCSV:
		return "csv"
	case FormatPDF:
		return "pdf"
	case FormatCalendar:
		return "ics"
	}
	return "txt"
}

func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	case FormatCalendar:
		return "text/calendar; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// FileName returns the download name of an export generated at t.
func (f Format) FileName(t time.Time) string {
	if f == FormatCalendar {
		return "zenstudio-calendar.ics"
	}
	return "zenstudio-export-" + t.Format("20060102-150405") + "." + f.Extension()
}

// Render renders payload in a payload format. The calendar format needs
// the scheduled posts and goes through GenerateICS instead.
func Render(f Format, payload ExportPayload) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatMarkdown:
		data = []byte(ToMarkdown(payload))
	case FormatCSV:
		data = []byte(ToCSV(payload))
	case FormatPDF:
		data, err = ToPDF(payload)
	default:
		err = fmt.Errorf("format %q cannot render an export payload", f)
	}
	metrics.Exported(string(f), len(data), err)
	return data, err
}

// RenderCalendar is GenerateICS with the export recorded in metrics.
func RenderCalendar(posts []models.ScheduledPost, opts CalendarOptions) ([]byte, error) {
	ics, err := GenerateICS(posts, opts)
	metrics.Exported(string(FormatCalendar), len(ics), err)
	if err != nil {
		return nil, err
	}
	return []byte(ics), nil
}
