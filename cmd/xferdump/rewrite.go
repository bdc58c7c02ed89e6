package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bft-labs/xferdump/internal/domain"
	"github.com/bft-labs/xferdump/pkg/source"
)

func newRewriteCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "rewrite <infile> <outfile>",
		Short: "Turn a hex text dump into an annotated C array",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return &domain.IOError{Op: "open", Path: args[0], Err: err}
			}
			defer in.Close()

			out, err := os.Create(args[1])
			if err != nil {
				return &domain.IOError{Op: "create", Path: args[1], Err: err}
			}
			if err := source.Rewrite(in, out, name); err != nil {
				out.Close()
				return fmt.Errorf("rewrite %s: %w", args[0], err)
			}
			if err := out.Close(); err != nil {
				return &domain.IOError{Op: "close", Path: args[1], Err: err}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "rewrite_bytes", "name of the generated array")
	return cmd
}
