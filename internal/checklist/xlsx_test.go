package checklist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/bilgisen/zenstudio/internal/models"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestFormatXLSX(t *testing.T) {
	items := []models.ChecklistItem{
		{Text: "Proofread", Completed: true},
		{Text: "Add cover image"},
	}
	data, err := FormatXLSX(items, "")
	if err != nil {
		t.Fatalf("FormatXLSX() error = %v", err)
	}
	f := openWorkbook(t, data)

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != DefaultSheetTitle {
		t.Fatalf("sheets = %v", sheets)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"status", "task"},
		{"close", "Proofread"},
		{"open", "Add cover image"},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %v", rows)
	}
	for i := range want {
		if strings.Join(rows[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %v, want %v", i+1, rows[i], want[i])
		}
	}

	idx, err := f.GetCellStyle(sheet, "B1")
	if err != nil {
		t.Fatal(err)
	}
	style, err := f.GetStyle(idx)
	if err != nil || style.Font == nil || !style.Font.Bold {
		t.Errorf("header style = %+v, %v", style, err)
	}

	panes, err := f.GetPanes(sheet)
	if err != nil {
		t.Fatal(err)
	}
	if !panes.Freeze || panes.YSplit != 1 {
		t.Errorf("panes = %+v, want header row frozen", panes)
	}

	dvs, err := f.GetDataValidations(sheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(dvs) != 1 {
		t.Fatalf("data validations = %d", len(dvs))
	}
	if dvs[0].Sqref != "A2:A3" || !strings.Contains(dvs[0].Formula1, "open,close") {
		t.Errorf("validation = %s %s", dvs[0].Sqref, dvs[0].Formula1)
	}

	width, err := f.GetColWidth(sheet, "B")
	if err != nil || width != 60 {
		t.Errorf("task column width = %v, %v", width, err)
	}
}

func TestFormatXLSXEmpty(t *testing.T) {
	data, err := FormatXLSX(nil, "Launch")
	if err != nil {
		t.Fatalf("FormatXLSX() error = %v", err)
	}
	f := openWorkbook(t, data)

	rows, err := f.GetRows("Launch")
	if err != nil || len(rows) != 1 {
		t.Errorf("rows = %v, %v", rows, err)
	}
	dvs, err := f.GetDataValidations("Launch")
	if err != nil || len(dvs) != 0 {
		t.Errorf("data validations = %d, %v", len(dvs), err)
	}
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", DefaultSheetTitle},
		{"  ", DefaultSheetTitle},
		{"Q3: launch/plan", "Q3- launch-plan"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
	}
	for _, tt := range tests {
		if got := sheetName(tt.in); got != tt.want {
			t.Errorf("sheetName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRender(t *testing.T) {
	items := []models.ChecklistItem{{Text: "Proofread", Completed: true}}

	tests := []struct {
		format, ext, fileName string
	}{
		{"markdown", "md", "zenstudio-checklist.md"},
		{"MD", "md", "zenstudio-checklist.md"},
		{"csv", "csv", "zenstudio-checklist.csv"},
		{"xlsx", "xlsx", "zenstudio-checklist.xlsx"},
	}
	for _, tt := range tests {
		doc, err := Render(tt.format, items, "")
		if err != nil {
			t.Fatalf("Render(%q) error = %v", tt.format, err)
		}
		if doc.Extension != tt.ext || doc.FileName() != tt.fileName || len(doc.Data) == 0 {
			t.Errorf("Render(%q) = %s %s %d bytes", tt.format, doc.Extension, doc.FileName(), len(doc.Data))
		}
	}

	if _, err := Render("docx", items, ""); err == nil {
		t.Error("Render(docx) succeeded")
	}
}
