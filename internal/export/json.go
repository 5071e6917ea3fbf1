package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"Mansoor88-6/timeclock/internal/models"
)

type jsonExport struct {
	ExportedAt string                `json:"exported_at"`
	Count      int                   `json:"count"`
	Totals     models.HoursBreakdown `json:"totals"`
	Days       []models.ExportRecord `json:"days"`
}

func writeJSON(w io.Writer, records []models.ExportRecord, totals models.HoursBreakdown, now time.Time) error {
	export := jsonExport{
		ExportedAt: now.Format(time.RFC3339),
		Count:      len(records),
		Totals:     totals,
		Days:       records,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = w.Write(data)
	return err
}
