package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"marketfactory/internal/registry/client"
)

var version = "dev"

type rootOptions struct {
	addr    string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "registryctl",
		Short:         "Query the market factory registry",
		Long:          `registryctl reads the market registry through the registry HTTP API: the full list, the count, or one page.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	defaultAddr := os.Getenv("REGISTRY_ADDR")
	if defaultAddr == "" {
		defaultAddr = "http://localhost:8080"
	}
	root.PersistentFlags().StringVarP(&opts.addr, "addr", "a", defaultAddr, "registry API base URL (env REGISTRY_ADDR)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")

	root.AddCommand(newListCmd(opts), newCountCmd(opts), newPageCmd(opts))
	return root
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every market ID in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, opts)
			defer cancel()
			ids, err := opts.client().ListAll(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), ids)
		},
	}
}

func newCountCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of registered markets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, opts)
			defer cancel()
			n, err := opts.client().Count(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), n.String())
			return err
		},
	}
}

func newPageCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "page FROM_INDEX LIMIT",
		Short: "Print at most LIMIT market IDs starting at FROM_INDEX",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("FROM_INDEX must be an unsigned 64-bit integer: %w", err)
			}
			limit, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("LIMIT must be an unsigned 64-bit integer: %w", err)
			}

			ctx, cancel := commandContext(cmd, opts)
			defer cancel()
			ids, err := opts.client().ListPage(ctx, from, limit)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), ids)
		},
	}
}

func (o *rootOptions) client() *client.Client {
	return client.New(o.addr, nil)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
