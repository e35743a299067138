package main

import (
	"fmt"
	"os"

	"dhall-lang.org/go/dhall"
	"dhall-lang.org/go/internal/core/normalize"
	"dhall-lang.org/go/internal/core/typecheck"
	"github.com/spf13/cobra"
)

func newNormalizeCmd() *cobra.Command {
	var skipTypecheck bool
	var alpha bool
	cmd := &cobra.Command{
		Use:   "normalize <file.dhallb>",
		Short: "normalize a binary-encoded expression and print its normal form",
		Long: `normalize decodes a binary-encoded expression, typechecks it (unless
--skip-typecheck is given, matching spec.md 7's note that normalization
itself never fails even for an ill-typed term), reduces it to beta-normal
form, and prints the result. --alpha additionally alpha-normalizes bound
variable names for a canonical, diff-friendly rendering.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			e, err := dhall.Decode(data)
			if err != nil {
				return err
			}
			if !skipTypecheck {
				if _, err := dhall.Typecheck(e); err != nil {
					return err
				}
			}
			v := dhall.Normalize(e)
			if alpha {
				v = normalize.AlphaNormalize(v)
			}
			fmt.Fprintln(cmd.OutOrStdout(), typecheck.DescribeExpr(normalize.Quote(v)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipTypecheck, "skip-typecheck", false, "normalize without typechecking first")
	cmd.Flags().BoolVar(&alpha, "alpha", false, "alpha-normalize bound variable names in the result")
	return cmd
}
