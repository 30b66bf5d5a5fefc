package cli

import (
	"github.com/spf13/cobra"

	"patchstack.dev/patchstack/internal/commit"
	"patchstack.dev/patchstack/internal/errs"
)

func newUncommitCmd() *cobra.Command {
	var (
		number int
		to     string
	)

	cmd := &cobra.Command{
		Use:          "uncommit",
		Short:        "Turn committed ancestors back into the bottom of the stack",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if to != "" && cmd.Flags().Changed("number") {
				return &errs.UsageError{Detail: "uncommit: --number and --to are mutually exclusive"}
			}

			s, err := loadStack(cmd.Context(), "")
			if err != nil {
				return err
			}

			splog := newSplog()
			opts := commit.UncommitOptions{Number: number, To: to}
			if err := commit.Uncommit(cmd.Context(), s, opts, splog.Writer()); err != nil {
				return err
			}
			splog.Info("Uncommitted")
			return nil
		},
	}

	cmd.Flags().IntVarP(&number, "number", "n", 1, "number of commits to pull back into the stack")
	cmd.Flags().StringVar(&to, "to", "", "pull commits back until this ancestor (mutually exclusive with --number)")
	return cmd
}
