package checklist

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bilgisen/zenstudio/internal/models"
)

// DefaultSheetTitle names the worksheet when FormatXLSX gets no title.
const DefaultSheetTitle = "zenstudio-checklist"

// StatusOptions are the values offered in the status column of a sheet.
var StatusOptions = []string{"open", "close"}

// FormatXLSX renders items as a workbook with one sheet of status,task
// rows. The header row is bold and frozen, and every status cell offers
// StatusOptions as a drop-down list.
func FormatXLSX(items []models.ChecklistItem, title string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(title)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetColWidth(sheet, "A", "A", 12); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "B", "B", 60); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{"status", "task"}); err != nil {
		return nil, err
	}
	for i, item := range items {
		status := StatusOptions[0]
		if item.Completed {
			status = StatusOptions[1]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &[]any{status, item.Text}); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", bold); err != nil {
		return nil, err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}

	if len(items) > 0 {
		dv := excelize.NewDataValidation(true)
		dv.Sqref = fmt.Sprintf("A2:A%d", len(items)+1)
		if err := dv.SetDropList(StatusOptions); err != nil {
			return nil, err
		}
		if err := f.AddDataValidation(sheet, dv); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName makes title usable as a worksheet name.
func sheetName(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '-'
		}
		return r
	}, title)
	title = strings.Trim(title, "'")
	if title == "" {
		return DefaultSheetTitle
	}
	if r := []rune(title); len(r) > 31 {
		title = string(r[:31])
	}
	return title
}
