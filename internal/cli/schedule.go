package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rojanmagar2001/sitemap404/internal/app"
	"github.com/rojanmagar2001/sitemap404/internal/config"
	"github.com/rojanmagar2001/sitemap404/internal/scheduler"
)

func newScheduleCommand(root *rootOptions) *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the 404 check on a cron schedule",
		Long: `Run the 404 check whenever the cron expression fires until interrupted.
A trigger is skipped while the previous run is still active. On SIGINT or
SIGTERM the scheduler stops and waits for the active run to finish.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := root.viper()
			if err != nil {
				return err
			}
			if err := bindFlags(v, cmd, map[string]string{"cron": "schedule.cron"}); err != nil {
				return err
			}

			cfg, err := config.FromViper(v)
			if err != nil {
				return err
			}
			log, err := newLogger(v)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, log, app.Options{})
			if err != nil {
				return err
			}
			s, err := scheduler.New(cfg.Schedule.Cron, a.Orchestrator, log)
			if err != nil {
				return err
			}
			if err := s.Start(ctx); err != nil {
				return err
			}
			if now {
				s.Trigger()
			}

			<-ctx.Done()
			s.Stop()
			return nil
		},
	}

	cmd.Flags().String("cron", "", "5-field cron expression (overrides schedule.cron)")
	cmd.Flags().BoolVar(&now, "now", false, "run once immediately, then follow the schedule")
	return cmd
}
