// Package export encodes timecards as CSV, JSON or an xlsx report. Files are
// written to a temporary name and renamed into place, so a failed export
// never leaves a partial file behind.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Mansoor88-6/timeclock/internal/models"
	"Mansoor88-6/timeclock/internal/timecard"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatReport Format = "report"
)

// ErrUnknownFormat is returned for a format other than csv, json or report.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatReport:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Extension returns the file extension written for the format.
func (f Format) Extension() string {
	if f == FormatReport {
		return ".xlsx"
	}
	return "." + string(f)
}

type Exporter struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

func NewExporter(dir string, logger *zap.Logger) *Exporter {
	return &Exporter{dir: dir, logger: logger, now: time.Now}
}

// Records flattens day timecards into canonical export rows, keeping order.
func Records(days []models.DayTimecard) []models.ExportRecord {
	records := make([]models.ExportRecord, 0, len(days))
	for _, d := range days {
		rec := models.ExportRecord{
			Date:       d.Date,
			Status:     d.Status,
			EventCount: len(d.Events),
			Hours:      d.Hours,
		}
		jobs := map[string]struct{}{}
		for _, e := range d.Events {
			ts := e.Timestamp
			switch e.Kind {
			case models.KindClockIn:
				if rec.FirstIn == nil || ts.Before(*rec.FirstIn) {
					rec.FirstIn = &ts
				}
			case models.KindClockOut:
				if rec.LastOut == nil || ts.After(*rec.LastOut) {
					rec.LastOut = &ts
				}
			}
			if name := e.JobName(); name != "" {
				jobs[name] = struct{}{}
			}
		}
		for name := range jobs {
			rec.Jobs = append(rec.Jobs, name)
		}
		sort.Strings(rec.Jobs)
		records = append(records, rec)
	}
	return records
}

// Export writes days in the requested format to a new file in the export
// directory and reports the record count and file location.
func (x *Exporter) Export(ctx context.Context, days []models.DayTimecard, format Format) (models.ExportResult, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return models.ExportResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.ExportResult{}, err
	}

	records := Records(days)
	totals := timecard.Summarize(days)
	now := x.now().UTC()

	// Exports within the same second must not replace each other.
	name := fmt.Sprintf("timecard-%s-%s%s", now.Format("20060102-150405"), uuid.NewString(), format.Extension())
	path := filepath.Join(x.dir, name)

	err := writeAtomic(path, func(w io.Writer) error {
		switch format {
		case FormatCSV:
			return writeCSV(w, records)
		case FormatJSON:
			return writeJSON(w, records, totals, now)
		default:
			return writeReport(w, records, totals, now)
		}
	})
	if err != nil {
		x.logger.Error("Export failed",
			zap.String("format", string(format)),
			zap.Error(err),
		)
		return models.ExportResult{}, err
	}

	x.logger.Info("Export written",
		zap.String("format", string(format)),
		zap.Int("count", len(records)),
		zap.String("path", path),
	)
	return models.ExportResult{Format: string(format), Count: len(records), Location: path}, nil
}

// writeAtomic writes through a temp file in the target directory and renames
// it into place only after every byte was written and flushed.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("encode export: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename export: %w", err)
	}
	return nil
}

func formatHours(h float64) string {
	return fmt.Sprintf("%.2f", h)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
