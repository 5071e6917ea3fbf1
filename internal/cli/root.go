// Package cli implements the timeclock command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "timeclock",
		Short: "Timeclock - clock events, daily hours and overtime",
		Long: `timeclock records clock events, groups them into work days, splits
worked hours into regular, overtime and double-time, and submits days for approval.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "config/local.yaml", "Path to configuration file")

	root.AddCommand(
		newServeCmd(opts),
		newSummaryCmd(opts),
		newDayCmd(opts),
		newSubmitCmd(opts),
		newExportCmd(opts),
		newPunchCmd(opts),
		newContextCmd(opts),
	)
	return root
}

// Execute is the entry point called from main.
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp opens the app for a single command run.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(*App) error) error {
	app, err := NewApp(cmd.Context(), opts.configPath)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}
