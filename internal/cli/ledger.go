package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rojanmagar2001/sitemap404/internal/infra/store"
	"github.com/rojanmagar2001/sitemap404/internal/ledger"
)

func newLedgerCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and triage the dead link ledger",
	}
	cmd.AddCommand(newLedgerListCommand(root), newLedgerSetStatusCommand(root))
	return cmd
}

// ledgerStore opens the ledger file without requiring a full run config.
func (o *rootOptions) ledgerStore() (*store.File, error) {
	v, err := o.viper()
	if err != nil {
		return nil, err
	}
	path := v.GetString("ledger.path")
	if path == "" {
		return nil, fmt.Errorf("ledger.path is not set")
	}
	return store.NewFile(path), nil
}

func newLedgerListCommand(root *rootOptions) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter ledger.Status
			if status != "" {
				s, err := ledger.ParseStatus(status)
				if err != nil {
					return err
				}
				filter = s
			}

			st, err := root.ledgerStore()
			if err != nil {
				return err
			}
			l, err := st.Load(cmd.Context())
			if err != nil {
				return err
			}

			renderLedger(cmd.OutOrStdout(), l, filter)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only show records with this status (open, fixed, ignore)")
	return cmd
}

func renderLedger(w io.Writer, l *ledger.Ledger, filter ledger.Status) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "URL", "Parent", "Status"})

	shown := 0
	for _, r := range l.Records() {
		if filter != "" && r.Status != filter {
			continue
		}
		shown++
		t.AppendRow(table.Row{shown, r.URL, r.Parent, r.Status})
	}
	t.AppendFooter(table.Row{"", "", "Shown", shown})
	t.Render()

	counts := l.Counts()
	fmt.Fprintf(w, "Total %d:", l.Len())
	for _, s := range ledger.Statuses {
		fmt.Fprintf(w, " %s %d", s, counts[s])
	}
	fmt.Fprintln(w)
}

func newLedgerSetStatusCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <url> <parent> <open|fixed|ignore>",
		Short: "Change the status of one ledger record",
		Long: `Change the status of the record identified by url and parent. Use SELF as
the parent for a page that is itself missing.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := ledger.ParseStatus(args[2])
			if err != nil {
				return err
			}

			st, err := root.ledgerStore()
			if err != nil {
				return err
			}
			l, err := st.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := l.SetStatus(args[0], args[1], status); err != nil {
				return err
			}
			if err := st.Save(cmd.Context(), l); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (from: %s) -> %s\n", args[0], args[1], status)
			return nil
		},
	}
}
