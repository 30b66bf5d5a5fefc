package main

import (
	"errors"
	"fmt"
	"os"

	"patchstack.dev/patchstack/internal/cli"
	"patchstack.dev/patchstack/internal/errs"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cli.NewRootCmd(version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var usageErr *errs.UsageError
		if errors.As(err, &usageErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
