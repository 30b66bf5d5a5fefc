package cli

import (
	"github.com/spf13/cobra"

	"patchstack.dev/patchstack/internal/commit"
	"patchstack.dev/patchstack/internal/errs"
)

func newCommitCmd() *cobra.Command {
	var (
		number     int
		all        bool
		allowEmpty bool
	)

	cmd := &cobra.Command{
		Use:          "commit [PATCH...]",
		Short:        "Finalize patches into base history, removing them from the stack",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			numberGiven := cmd.Flags().Changed("number")

			// §6: the [PATCH…] / -n / --all flag triplet is mutually exclusive.
			given := 0
			if len(args) > 0 {
				given++
			}
			if numberGiven {
				given++
			}
			if all {
				given++
			}
			if given > 1 {
				return &errs.UsageError{Detail: "commit: PATCH arguments, --number and --all are mutually exclusive"}
			}

			s, err := loadStack(cmd.Context(), "")
			if err != nil {
				return err
			}

			splog := newSplog()
			opts := commit.Options{Patches: args, Number: number, NumberGiven: numberGiven, All: all, AllowEmpty: allowEmpty}
			if err := commit.Run(cmd.Context(), s, opts, splog.Writer()); err != nil {
				return err
			}
			splog.Info("Committed")
			return nil
		},
	}

	cmd.Flags().IntVarP(&number, "number", "n", 0, "commit the bottom N applied patches")
	cmd.Flags().BoolVar(&all, "all", false, "commit every applied patch")
	cmd.Flags().BoolVar(&allowEmpty, "allow-empty", false, "suppress the empty-patch guard")
	return cmd
}
