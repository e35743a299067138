package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd builds the dhall command tree. Every subcommand here reads
// and writes package dhall/internal/core/binary's canonical binary form
// rather than Dhall source text: spec.md 1 names the grammar and parser
// as an external collaborator this module never implements, so the one
// entry point into the core pipeline this CLI can drive end to end
// without one is the binary codec - decode, typecheck, normalize,
// re-encode. A future `cue`-style `import`/`eval` pair that takes .dhall
// source is a straightforward addition once a parser package exists, not
// a redesign of this command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dhall",
		Short:         "inspect, typecheck and normalize Dhall expressions in binary form",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newDecodeCmd())
	root.AddCommand(newTypecheckCmd())
	root.AddCommand(newNormalizeCmd())
	root.AddCommand(newEncodeCmd())
	return root
}
