// Package cli implements the sitemap404 command-line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rojanmagar2001/sitemap404/internal/config"
	"github.com/rojanmagar2001/sitemap404/internal/logger"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

type rootOptions struct {
	cfgFile string
	debug   bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "sitemap404",
		Short: "Find pages and links that return 404",
		Long: `sitemap404 walks a site's sitemap, checks every listed page and the links
on it for 404 responses, records new findings in a JSON ledger and posts
a summary to a Teams webhook.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "",
		"config file (default is ./config.yaml or ./config/config.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newRunCommand(opts),
		newScheduleCommand(opts),
		newLedgerCommand(opts),
		newVersionCommand(),
	)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}

// viper loads configuration sources and applies the global flags.
func (o *rootOptions) viper() (*viper.Viper, error) {
	v, err := config.NewViper(o.cfgFile)
	if err != nil {
		return nil, err
	}
	if o.debug {
		v.Set("log.level", "debug")
		v.Set("log.development", true)
	}
	return v, nil
}

func newLogger(v *viper.Viper) (logger.Logger, error) {
	return logger.New(logger.Config{
		Level:       v.GetString("log.level"),
		Development: v.GetBool("log.development"),
	})
}

// bindFlags maps command flags onto config keys. A flag only overrides the
// config when it is set on the command line.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind %s flag: %w", flag, err)
		}
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sitemap404 version %s\n", Version)
		},
	}
}
