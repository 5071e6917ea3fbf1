package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"Mansoor88-6/timeclock/internal/apperror"
	"Mansoor88-6/timeclock/internal/models"
	"Mansoor88-6/timeclock/internal/service"
	"Mansoor88-6/timeclock/internal/timecard"
)

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var period, search string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show daily hours and the overtime breakdown for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(app *App) error {
				tc, err := app.service.Load(cmd.Context(), service.Query{Period: period, Search: search})
				if err != nil {
					return err
				}
				renderTimecard(cmd.OutOrStdout(), tc)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&period, "period", "week", "Period: week, month, all")
	cmd.Flags().StringVar(&search, "search", "", "Only events whose job, task or action contains this text")
	return cmd
}

func newDayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "Show the events and hours of one day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(app *App) error {
				date, err := dateArg(app, args)
				if err != nil {
					return err
				}
				day, err := app.service.Day(cmd.Context(), date)
				if err != nil {
					return err
				}
				cal, _ := app.cfg.Calendar()
				renderDay(cmd.OutOrStdout(), day, cal.Location)
				return nil
			})
		},
	}
}

func newSubmitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "submit [YYYY-MM-DD]",
		Short: "Submit a draft day for approval (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(app *App) error {
				date, err := dateArg(app, args)
				if err != nil {
					return err
				}
				day, err := app.service.Submit(cmd.Context(), date)
				if errors.Is(err, service.ErrSubmissionQueued) {
					fmt.Fprintf(cmd.OutOrStdout(), "Backend unavailable, %s queued for retry.\n", date)
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Submitted %s (%s hours).\n", day.Date, hours(day.Hours.Total))
				return nil
			})
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var req models.ExportRequest
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the timecard to a csv, json or xlsx report file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(app *App) error {
				result, err := app.service.Export(cmd.Context(), req)
				if err != nil {
					return describe(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d days to %s\n", result.Count, result.Location)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Format, "format", "csv", "Output format: csv, json, report")
	cmd.Flags().StringVar(&req.Period, "period", "week", "Period: week, month, all")
	cmd.Flags().StringVar(&req.Query, "search", "", "Only events whose job, task or action contains this text")
	return cmd
}

func newPunchCmd(opts *rootOptions) *cobra.Command {
	var (
		req      models.RecordClockEventRequest
		at       string
		lat, lng float64
	)
	cmd := &cobra.Command{
		Use:       "punch <clock_in|clock_out|lunch_out|lunch_in>",
		Short:     "Record a clock event",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(models.KindClockIn), string(models.KindClockOut), string(models.KindLunchOut), string(models.KindLunchIn)},
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Kind = models.EventKind(args[0])
			req.Timestamp = time.Now()
			if at != "" {
				ts, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at %q: %w", at, err)
				}
				req.Timestamp = ts
			}
			if cmd.Flags().Changed("lat") {
				req.Latitude = &lat
			}
			if cmd.Flags().Changed("lng") {
				req.Longitude = &lng
			}

			return withApp(cmd, opts, func(app *App) error {
				e, err := app.service.Record(cmd.Context(), req)
				if err != nil {
					return describe(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s recorded for %s (%s)\n", e.Kind.Label(), e.Date, e.ID)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&at, "at", "", "Event time in RFC3339 (default now)")
	f.StringVar(&req.Date, "date", "", "Attributed date YYYY-MM-DD (default the event time's date)")
	f.StringVar(&req.JobID, "job-id", "", "Job id")
	f.StringVar(&req.JobName, "job", "", "Job name (default the selected clock context)")
	f.StringVar(&req.TaskID, "task-id", "", "Task id")
	f.StringVar(&req.TaskName, "task", "", "Task name (default the selected clock context)")
	f.Float64Var(&lat, "lat", 0, "Latitude")
	f.Float64Var(&lng, "lng", 0, "Longitude")
	f.StringVar(&req.Address, "address", "", "Resolved address")
	return cmd
}

func newContextCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Show the job and task used for new clock events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(app *App) error {
				cc, err := app.service.ClockContext(cmd.Context())
				if err != nil {
					return err
				}
				printContext(cmd, cc)
				return nil
			})
		},
	}

	var cc models.ClockContext
	set := &cobra.Command{
		Use:   "set",
		Short: "Select the job and task for new clock events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(app *App) error {
				saved, err := app.service.SetClockContext(cmd.Context(), cc)
				if err != nil {
					return err
				}
				printContext(cmd, saved)
				return nil
			})
		},
	}
	set.Flags().StringVar(&cc.JobID, "job-id", "", "Job id")
	set.Flags().StringVar(&cc.JobName, "job", "", "Job name")
	set.Flags().StringVar(&cc.TaskID, "task-id", "", "Task id")
	set.Flags().StringVar(&cc.TaskName, "task", "", "Task name")

	cmd.AddCommand(set)
	return cmd
}

func printContext(cmd *cobra.Command, cc models.ClockContext) {
	job, task := cc.JobName, cc.TaskName
	if job == "" {
		job = "-"
	}
	if task == "" {
		task = "-"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Job:  %s\nTask: %s\n", job, task)
}

func dateArg(app *App, args []string) (civil.Date, error) {
	if len(args) == 0 {
		cal, err := app.cfg.Calendar()
		if err != nil {
			return civil.Date{}, err
		}
		return cal.Today(time.Now()), nil
	}
	return timecard.ParseDate(args[0])
}

// describe flattens validation errors into one readable line.
func describe(err error) error {
	msgs := apperror.CustomValidationError(err)
	if len(msgs) == 0 {
		return err
	}
	var parts []string
	for _, m := range msgs {
		for field, msg := range m {
			parts = append(parts, field+" "+msg)
		}
	}
	return fmt.Errorf("invalid input: %s", strings.Join(parts, "; "))
}
