// Package cli implements the shopify-sync command line.
package cli

import (
	"context"
	"fmt"

	"github.com/erp/shopify-sync/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

// annotationSkipConfig marks commands that run without a config file
const annotationSkipConfig = "skip-config"

// options holds the state shared by all commands of one invocation
type options struct {
	cfgFile  string
	logLevel string
	version  string
	cfg      *config.Config

	// loadConfig is replaced in tests
	loadConfig func(path string) (*config.Config, error)
}

// NewRootCommand builds the shopify-sync command tree
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(&options{version: version, loadConfig: config.Load})
}

func newRootCommand(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "shopify-sync",
		Short: "Synchronize customers and addresses with Shopify",
		Long: `shopify-sync mirrors Shopify customers and their addresses into the ERP
database and pushes locally created or edited addresses back to Shopify.

Runs are triggered on demand; schedule them with cron or a Kubernetes CronJob.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Annotations[annotationSkipConfig] != "" {
				return nil
			}
			cfg, err := opts.loadConfig(opts.cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if opts.logLevel != "" {
				cfg.Log.Level = opts.logLevel
			}
			opts.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file path (default: ./config.toml or /etc/shopify-sync/config.toml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(
		newRunCommand(opts),
		newCustomersCommand(opts),
		newAddressesCommand(opts),
		newLogsCommand(opts),
		newMigrateCommand(opts),
		newVersionCommand(opts),
	)
	return root
}

// Execute runs the command tree with ctx
func Execute(ctx context.Context, version string) error {
	return NewRootCommand(version).ExecuteContext(ctx)
}

func newVersionCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version number",
		Annotations: map[string]string{annotationSkipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shopify-sync %s\n", opts.version)
		},
	}
}
