package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"Mansoor88-6/timeclock/internal/models"
)

const (
	reportSheet  = "Timecard"
	summarySheet = "Summary"
)

// writeReport renders a two-sheet workbook: one row per day, then totals.
func writeReport(w io.Writer, records []models.ExportRecord, totals models.HoursBreakdown, now time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, header := range csvHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(reportSheet, cell, header); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err == nil {
		f.SetRowStyle(reportSheet, 1, 1, headerStyle)
	}

	for i, r := range records {
		row := i + 2
		values := []interface{}{
			r.Date.String(),
			string(r.Status),
			r.EventCount,
			formatTime(r.FirstIn),
			formatTime(r.LastOut),
			strings.Join(r.Jobs, "; "),
			r.Hours.Total,
			r.Hours.Regular,
			r.Hours.Overtime,
			r.Hours.DoubleTime,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(reportSheet, cell, value); err != nil {
				return err
			}
		}
	}
	f.SetColWidth(reportSheet, "A", "J", 15)

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Generated", now.Format(time.RFC3339)},
		{"Days", len(records)},
		{"Total", totals.Total},
		{"Regular", totals.Regular},
		{"Overtime", totals.Overtime},
		{"Double Time", totals.DoubleTime},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}
	f.SetColWidth(summarySheet, "A", "B", 20)

	return f.Write(w)
}
