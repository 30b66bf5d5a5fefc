package cli

import (
	"github.com/spf13/cobra"

	"patchstack.dev/patchstack/internal/stackops"
)

func newPopCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:          "pop [PATCH...]",
		Short:        "Pop applied patches back onto unapplied",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStack(cmd.Context(), "")
			if err != nil {
				return err
			}

			splog := newSplog()
			err = stackops.Pop(cmd.Context(), s, stackops.PopOptions{Patches: args, All: all}, splog.Writer())
			if err != nil {
				return err
			}
			splog.Info("Popped")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "pop all applied patches")
	return cmd
}
