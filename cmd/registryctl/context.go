package main

import (
	"context"

	"github.com/spf13/cobra"
)

func commandContext(cmd *cobra.Command, opts *rootOptions) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, opts.timeout)
}
