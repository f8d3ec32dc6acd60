package main

import (
	"context"
	"os"

	"github.com/jeffnash/patch-22/internal/cli"
)

// main bootstraps the apply_patch command-line tool.
func main() {
	os.Exit(cli.Run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
