package main

import "github.com/spf13/pflag"

// addOutFlag registers the shared --out flag on fs, for subcommands that
// can write their result to a file instead of stdout.
func addOutFlag(fs *pflag.FlagSet, out *string) {
	fs.StringVar(out, "out", "", "write the output to this file instead of stdout")
}
