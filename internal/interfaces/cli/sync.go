package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/erp/shopify-sync/internal/domain/partner"
	"github.com/spf13/cobra"
)

// withSyncApp runs fn with a wired app and a context bounded by sync.timeout
func withSyncApp(cmd *cobra.Command, opts *options, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if opts.cfg.Sync.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.cfg.Sync.Timeout)
		defer cancel()
	}

	a, err := newSyncApp(ctx, opts.cfg)
	if err != nil {
		return err
	}
	runErr := fn(ctx, a)
	if err := a.Close(ctx); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func newRunCommand(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a full sync pass",
		Long: `Pull Shopify customers that are not mirrored yet, then push the addresses of
every sync-enabled customer changed since the last successful run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSyncApp(cmd, opts, func(ctx context.Context, a *app) error {
				summary, err := a.runner.Run(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), summary)
				}
				out := cmd.OutOrStdout()
				if summary.Skipped {
					fmt.Fprintln(out, "Shopify sync is disabled in settings; nothing to do.")
					return nil
				}
				fmt.Fprintf(out, "Customers created:  %d\n", summary.Customers)
				fmt.Fprintf(out, "Addresses created:  %d\n", summary.AddressesCreated)
				fmt.Fprintf(out, "Addresses updated:  %d\n", summary.AddressesUpdated)
				fmt.Fprintf(out, "Duration:           %s\n", summary.Duration().Round(time.Millisecond))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func newCustomersCommand(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "customers",
		Short: "Pull Shopify customers not mirrored locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSyncApp(cmd, opts, func(ctx context.Context, a *app) error {
				result, err := a.customerSync.SyncCustomers(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), result)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %d customer(s), skipped %d, failed %d\n",
					result.Count(), result.SkippedCount, result.FailedCount)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newAddressesCommand(opts *options) *cobra.Command {
	var since string

	cmd := &cobra.Command{
		Use:   "addresses CUSTOMER",
		Short: "Push a customer's addresses to Shopify",
		Long: `Push the addresses of one customer, identified by its record name.
Without --since every address of the customer is pushed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cutoff, err := parseSince(since)
			if err != nil {
				return err
			}
			return withSyncApp(cmd, opts, func(ctx context.Context, a *app) error {
				customer, err := a.customers.FindByName(ctx, partner.CustomerID(args[0]))
				if err != nil {
					return fmt.Errorf("customer %s: %w", args[0], err)
				}
				result, err := a.addressSync.UpdateAddressDetails(ctx, customer, cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %d address(es), updated %d\n", result.Created, result.Updated)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&since, "since", "", "only push addresses modified at or after this time (RFC 3339 or YYYY-MM-DD)")
	return cmd
}

// parseSince parses the --since flag. An empty value means no cutoff.
func parseSince(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid --since %q: use RFC 3339 or YYYY-MM-DD", value)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
