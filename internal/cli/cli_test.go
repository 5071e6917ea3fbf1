package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Mansoor88-6/timeclock/internal/models"
	"Mansoor88-6/timeclock/internal/timecard"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := strings.Join([]string{
		"env: test",
		"storage_path: " + filepath.Join(dir, "data", "timeclock.db"),
		"log:",
		"  level: error",
		"  format: json",
		"export:",
		"  dir: " + filepath.Join(dir, "exports"),
		"device:",
		"  id: test-device",
		"  name: bench",
		"",
	}, "\n")
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommands_EndToEnd(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := run(t, cfg, "context", "set", "--job-id", "j1", "--job", "Harbor Bridge")
	require.NoError(t, err)
	assert.Contains(t, out, "Harbor Bridge")

	_, err = run(t, cfg, "punch", "clock_in", "--at", "2026-10-14T08:00:00Z")
	require.NoError(t, err)
	out, err = run(t, cfg, "punch", "clock_out", "--at", "2026-10-14T18:00:00Z", "--task", "Welding")
	require.NoError(t, err)
	assert.Contains(t, out, "Clock Out recorded for 2026-10-14")

	out, err = run(t, cfg, "summary", "--period", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "2026-10-14")
	assert.Contains(t, out, "10.00")
	assert.Contains(t, out, "2.00")

	out, err = run(t, cfg, "day", "2026-10-14")
	require.NoError(t, err)
	assert.Contains(t, out, "Clock In")
	assert.Contains(t, out, "Harbor Bridge")
	assert.Contains(t, out, "Welding")

	out, err = run(t, cfg, "submit", "2026-10-14")
	require.NoError(t, err)
	assert.Contains(t, out, "Submitted 2026-10-14 (10.00 hours)")

	_, err = run(t, cfg, "submit", "2026-10-14")
	assert.ErrorIs(t, err, timecard.ErrAlreadySubmitted)

	out, err = run(t, cfg, "export", "--format", "json", "--period", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 days to")
}

func TestPunch_Invalid(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := run(t, cfg, "punch", "nap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input")

	_, err = run(t, cfg, "punch", "clock_in", "--at", "yesterday")
	assert.Error(t, err)

	_, err = run(t, cfg, "day", "14/10/2026")
	assert.ErrorIs(t, err, timecard.ErrInvalidDate)
}

func TestRenderTimecard(t *testing.T) {
	from := civil.Date{Year: 2026, Month: time.October, Day: 12}
	to := from.AddDays(6)
	day := from.AddDays(2)

	var buf bytes.Buffer
	renderTimecard(&buf, &models.Timecard{
		Period: "week",
		From:   &from,
		To:     &to,
		Days: []models.DayTimecard{{
			Date:   day,
			Events: make([]models.ClockEvent, 2),
			Hours:  models.HoursBreakdown{Total: 13, Regular: 8, Overtime: 4, DoubleTime: 1},
			Status: models.StatusSubmitted,
		}},
		Totals: models.HoursBreakdown{Total: 13, Regular: 8, Overtime: 4, DoubleTime: 1},
	})

	out := buf.String()
	assert.Contains(t, out, "(2026-10-12 - 2026-10-18)")
	assert.Contains(t, out, "2026-10-12")
	assert.Contains(t, out, "2026-10-14")
	assert.Contains(t, out, "submitted")
	assert.Contains(t, out, "13.00")
	assert.Contains(t, out, "Total")
}

func TestRenderTimecard_Empty(t *testing.T) {
	var buf bytes.Buffer
	renderTimecard(&buf, &models.Timecard{Period: "all", Days: []models.DayTimecard{}})
	assert.Contains(t, buf.String(), "No clock events")
}

func TestRootCmd_PlainASCIIHelp(t *testing.T) {
	cmd := NewRootCmd()
	for _, c := range append(cmd.Commands(), cmd) {
		for _, r := range c.Short {
			assert.Less(t, r, rune(0x80), "command %q short help", c.Name())
		}
	}
}
