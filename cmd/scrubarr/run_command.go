package main

import (
	"github.com/spf13/cobra"

	"scrubarr/internal/daemonrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts daemonrun.Options

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the triage loop",
		Long: "Run triage cycles for every configured Sonarr instance on the configured interval.\n" +
			"With --once a single pass runs and the command exits.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Once, "once", false, "Run a single triage pass and exit")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Classify and log without refreshing or deleting")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "Override logging.level (trace, debug, info, warn, error)")
	cmd.Flags().BoolVar(&opts.Development, "dev", false, "Include source locations in log output")
	return cmd
}
