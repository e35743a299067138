package main

import (
	"fmt"
	"os"

	"dhall-lang.org/go/dhall"
	"dhall-lang.org/go/internal/core/typecheck"
	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <file.dhallb>",
		Short: "decode a binary-encoded expression and print its unresolved syntax",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			e, err := dhall.Decode(data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), typecheck.DescribeExpr(e))
			return nil
		},
	}
	return cmd
}
