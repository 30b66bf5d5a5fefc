// Package cli provides command-line interface definitions using Cobra,
// wiring the stack/transaction/refresh/commit engines to a patch-stack CLI.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command.
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "patchstack",
		Short:   "patchstack manages a stack of named patches on top of a Git branch",
		Version: version,
		Long: `patchstack manages a stack of named patches on top of a Git branch.

Version: ` + version + `
Commit:  ` + commit + `
Date:    ` + date,
	}

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newUninitCmd())
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newPopCmd())
	rootCmd.AddCommand(newRefreshCmd())
	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(newUncommitCmd())
	rootCmd.AddCommand(newRenameCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newLogCmd())

	return rootCmd
}
