package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"Mansoor88-6/timeclock/internal/models"
)

var csvHeader = []string{
	"Date", "Status", "Events", "First In", "Last Out", "Jobs",
	"Total", "Regular", "Overtime", "Double Time",
}

func writeCSV(out io.Writer, records []models.ExportRecord) error {
	w := csv.NewWriter(out)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.Date.String(),
			string(r.Status),
			strconv.Itoa(r.EventCount),
			formatTime(r.FirstIn),
			formatTime(r.LastOut),
			strings.Join(r.Jobs, "; "),
			formatHours(r.Hours.Total),
			formatHours(r.Hours.Regular),
			formatHours(r.Hours.Overtime),
			formatHours(r.Hours.DoubleTime),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
