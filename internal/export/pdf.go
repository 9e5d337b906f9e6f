package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/bilgisen/zenstudio/internal/models"
)

const (
	pdfMargin     = 40.0
	pdfFontSize   = 10.0
	pdfLineHeight = 14.0
	pdfFont       = "Helvetica"
)

// pdfWriter draws lines top to bottom and starts a new page whenever the
// next line would cross the bottom margin.
type pdfWriter struct {
	doc       *fpdf.Fpdf
	translate func(string) string
	width     float64
	height    float64
	y         float64
}

func newPDFWriter() *pdfWriter {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(false, pdfMargin)
	doc.SetCreator("ZenStudio", true)
	doc.SetTitle("ZenStudio Export", true)

	w := &pdfWriter{
		doc:       doc,
		translate: doc.UnicodeTranslatorFromDescriptor(""),
	}
	w.addPage()
	return w
}

func (w *pdfWriter) addPage() {
	w.doc.AddPage()
	w.width, w.height = w.doc.GetPageSize()
	w.y = pdfMargin
}

func (w *pdfWriter) ensureSpace() {
	if w.y+pdfLineHeight > w.height-pdfMargin {
		w.addPage()
	}
}

func (w *pdfWriter) line(text string, bold bool) {
	w.ensureSpace()
	w.setFont(bold)
	w.doc.Text(pdfMargin, w.y+pdfFontSize, w.translate(text))
	w.y += pdfLineHeight
}

func (w *pdfWriter) gap(size float64) {
	w.y += size
}

func (w *pdfWriter) setFont(bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	w.doc.SetFont(pdfFont, style, pdfFontSize)
}

// wrap splits text greedily into lines that fit the printable width,
// measured with the regular body font. A single word wider than the page
// gets a line of its own.
func (w *pdfWriter) wrap(text string) []string {
	w.setFont(false)
	maxWidth := w.width - 2*pdfMargin

	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		next := word
		if current != "" {
			next = current + " " + word
		}
		if w.doc.GetStringWidth(w.translate(next)) <= maxWidth {
			current = next
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// ToPDF renders the payload as an A4 document in the same order as
// ToMarkdown.
func ToPDF(payload ExportPayload) ([]byte, error) {
	w := renderPDF(payload)

	var buf bytes.Buffer
	if err := w.doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func renderPDF(payload ExportPayload) *pdfWriter {
	w := newPDFWriter()

	w.line("ZenStudio Export", true)
	w.line("Generated: "+models.FormatTimestamp(payload.GeneratedAt), false)
	w.line(fmt.Sprintf("Posts: %d", len(payload.Posts)), false)
	w.gap(pdfLineHeight / 2)

	for _, post := range payload.Posts {
		w.line(postHeading(post), true)
		if post.Subtitle != "" {
			w.line("Subtitle: "+post.Subtitle, false)
		}
		w.line("Status: "+string(post.Status), false)
		w.line(fmt.Sprintf("Date: %s  Time: %s", orPlaceholder(post.Date), orPlaceholder(post.Time)), false)
		w.line(fmt.Sprintf("Characters: %d  Words: %d", post.CharacterCount, post.WordCount), false)
		w.line(fmt.Sprintf("Checklist: %d/%d", post.ChecklistSummary.Completed, post.ChecklistSummary.Total), false)
		w.gap(pdfLineHeight / 2)

		w.line("Content:", true)
		for _, l := range w.wrap(orPlaceholder(post.Content)) {
			w.line(l, false)
		}
		w.gap(pdfLineHeight / 2)

		w.line("Checklist:", true)
		if len(post.ChecklistItems) == 0 {
			w.line("- (no tasks)", false)
		}
		for _, item := range post.ChecklistItems {
			w.line(taskLine(item), false)
		}
		w.gap(pdfLineHeight)
	}

	if len(payload.UnassignedChecklist) > 0 {
		w.line("Unassigned tasks", true)
		for _, item := range payload.UnassignedChecklist {
			w.line(taskLine(item), false)
		}
	}
	return w
}
