package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rojanmagar2001/sitemap404/internal/app"
	"github.com/rojanmagar2001/sitemap404/internal/config"
	"github.com/rojanmagar2001/sitemap404/internal/domain"
)

func newRunCommand(root *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one 404 check now",
		Long: `Resolve the sitemap, check every in-scope page and its links, merge new
404s into the ledger and send the notification.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := root.viper()
			if err != nil {
				return err
			}
			if err := bindFlags(v, cmd, map[string]string{
				"max-dead":      "check.max_dead",
				"scope-prefix":  "check.scope_prefix",
				"internal-only": "check.internal_only",
			}); err != nil {
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

			report, err := app.Run(cmd.Context(), cfg, log, app.Options{
				DryRun: dryRun,
				Stdout: cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report, dryRun)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "check and print, but do not write the ledger or notify")
	cmd.Flags().Int("max-dead", 0, "stop after this many dead links (0 means no cap)")
	cmd.Flags().String("scope-prefix", "", "only check pages whose URL starts with this prefix")
	cmd.Flags().Bool("internal-only", false, "only check links on the site's own host")
	return cmd
}

func printReport(w io.Writer, r domain.Report, dryRun bool) {
	if len(r.Inserted) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.SetTitle("New 404s")
		t.AppendHeader(table.Row{"#", "URL", "Found on"})
		for i, d := range r.Inserted {
			t.AppendRow(table.Row{i + 1, d.URL, d.Parent})
		}
		t.Render()
	}

	fmt.Fprintf(w, "Run:           %s\n", r.RunID)
	fmt.Fprintf(w, "Pages found:   %d (in scope %d, checked %d)\n", r.PagesFound, r.PagesInScope, r.PagesChecked)
	fmt.Fprintf(w, "Dead links:    %d detected, %d new\n", len(r.Detected), len(r.Inserted))
	if r.CapReached {
		fmt.Fprintln(w, "Cap reached:   scan stopped early")
	}
	fmt.Fprintf(w, "Ledger:        %d records\n", r.LedgerRecords)
	switch {
	case dryRun:
		fmt.Fprintln(w, "Dry run:       ledger not written, notification printed above")
	case r.Notified:
		fmt.Fprintln(w, "Notification:  sent")
	default:
		fmt.Fprintln(w, "Notification:  not sent (see log)")
	}
	fmt.Fprintf(w, "Elapsed:       %s\n", r.Elapsed.Round(time.Millisecond))
}
