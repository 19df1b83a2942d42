package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/crm-backend/modules/crm"
	"github.com/example/crm-backend/modules/scheduler"
	"github.com/spf13/cobra"
)

const jobAll = "all"

func newRunJobCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "run-job <name>",
		Short:     "Run one scheduled job immediately",
		Long:      "Run one scheduled job immediately, or every job with \"all\". Available jobs: " + strings.Join(scheduler.Names(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: append(scheduler.Names(), jobAll),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			db, err := crm.OpenDatabase(cfg.Database.Path, cfg.Database.Debug)
			if err != nil {
				return err
			}
			defer crm.CloseDatabase(db)

			jobs := scheduler.NewJobs(cfg.Scheduler(), crm.NewService(crm.NewRepository(db)))
			run := func(ctx context.Context) error { return jobs.Run(ctx, args[0]) }
			if args[0] == jobAll {
				run = jobs.RunAll
			}
			if err := run(cmd.Context()); err != nil {
				return fmt.Errorf("job %s: %w", args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Job %s completed\n", args[0])
			return nil
		},
	}
}
