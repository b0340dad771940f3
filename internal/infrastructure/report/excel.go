package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
)

var checklistHeader = []string{
	"Document Kind",
	"Status",
	"Expected",
	"Received",
	"Progress %",
}

// ChecklistWorkbook renders a checklist view as an xlsx workbook for
// preparers who track intakes outside the system.
func ChecklistWorkbook(view *domain.ChecklistView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Checklist"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, title := range checklistHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, fmt.Errorf("set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header cell %s: %w", cell, err)
		}
	}

	for i, item := range view.Items {
		row := i + 2
		values := []any{
			string(item.Kind),
			string(item.Status),
			item.QuantityExpected,
			item.QuantityReceived,
			item.Progress,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	summaryRow := len(view.Items) + 3
	summary := []any{
		"TOTAL",
		string(view.IntakeStatus),
		view.TotalExpected,
		view.TotalReceived,
		view.OverallProgress,
	}
	for col, value := range summary {
		cell, err := excelize.CoordinatesToCellName(col+1, summaryRow)
		if err != nil {
			return nil, fmt.Errorf("summary cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return nil, fmt.Errorf("set summary cell %s: %w", cell, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
