// Command dhall is a thin front end over package dhall's four entry
// points, for manual use and for golden-file style testing. The core
// pipeline itself never touches flag.* or os.Args (spec.md 6's "no CLI is
// part of the core") - every flag this command accepts is parsed here and
// handed to dhall/internal/core as plain function arguments.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
