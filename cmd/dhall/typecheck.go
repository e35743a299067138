package main

import (
	"fmt"
	"os"

	"dhall-lang.org/go/dhall"
	"dhall-lang.org/go/internal/core/typecheck"
	"github.com/spf13/cobra"
)

func newTypecheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "typecheck <file.dhallb>",
		Short: "infer and print the type of a binary-encoded expression",
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
			typ, err := dhall.Typecheck(e)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), typecheck.Describe(typ))
			return nil
		},
	}
	return cmd
}
