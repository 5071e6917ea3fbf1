package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"Mansoor88-6/timeclock/internal/models"
)

var (
	colorPrimary = lipgloss.Color("#6C63FF")
	colorMuted   = lipgloss.Color("#666666")
	colorSuccess = lipgloss.Color("#2ECC71")
	colorWarning = lipgloss.Color("#F39C12")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
)

func statusStyle(s models.ApprovalStatus) lipgloss.Style {
	switch s {
	case models.StatusApproved:
		return cellStyle.Foreground(colorSuccess)
	case models.StatusSubmitted:
		return cellStyle.Foreground(colorWarning)
	default:
		return cellStyle
	}
}

func hours(h float64) string {
	return fmt.Sprintf("%.2f", h)
}

// renderTimecard prints one row per day and a totals row.
func renderTimecard(w io.Writer, tc *models.Timecard) {
	title := "Timecard · " + tc.Period
	if tc.From != nil && tc.To != nil {
		title += fmt.Sprintf(" (%s - %s)", tc.From, tc.To)
	}
	if tc.Query != "" {
		title += fmt.Sprintf(" · %q", tc.Query)
	}
	fmt.Fprintln(w, titleStyle.Render(title))

	if len(tc.Days) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No clock events in this period."))
		return
	}

	rows := make([][]string, 0, len(tc.Days)+1)
	for _, d := range tc.Days {
		rows = append(rows, []string{
			d.Date.String(),
			string(d.Status),
			fmt.Sprintf("%d", len(d.Events)),
			hours(d.Hours.Total),
			hours(d.Hours.Regular),
			hours(d.Hours.Overtime),
			hours(d.Hours.DoubleTime),
		})
	}
	rows = append(rows, []string{
		"Total", "", "",
		hours(tc.Totals.Total),
		hours(tc.Totals.Regular),
		hours(tc.Totals.Overtime),
		hours(tc.Totals.DoubleTime),
	})

	totalsRow := len(rows) - 1
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("Date", "Status", "Events", "Total", "Regular", "Overtime", "Double").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == totalsRow:
				return cellStyle.Bold(true)
			case col == 1:
				return statusStyle(tc.Days[row].Status)
			default:
				return cellStyle
			}
		})
	fmt.Fprintln(w, t.Render())
}

// renderDay prints a day's events in time order followed by its breakdown.
func renderDay(w io.Writer, day models.DayTimecard, loc *time.Location) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s · %s", day.Date, day.Status)))
	if len(day.Events) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No clock events."))
		return
	}

	rows := make([][]string, 0, len(day.Events))
	for _, e := range day.Events {
		var where string
		if e.Location != nil {
			where = e.Location.Address
			if where == "" {
				where = fmt.Sprintf("%.5f, %.5f", e.Location.Latitude, e.Location.Longitude)
			}
		}
		rows = append(rows, []string{
			e.Timestamp.In(loc).Format("15:04"),
			e.Kind.Label(),
			e.JobName(),
			e.TaskName(),
			where,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("Time", "Action", "Job", "Task", "Location").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())

	h := day.Hours
	fmt.Fprintln(w, strings.Join([]string{
		"Total " + hours(h.Total),
		"Regular " + hours(h.Regular),
		"Overtime " + hours(h.Overtime),
		"Double " + hours(h.DoubleTime),
	}, mutedStyle.Render(" · ")))
}
