package cli

import (
	"github.com/spf13/cobra"

	"patchstack.dev/patchstack/internal/stackops"
)

func newPushCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:          "push [PATCH...]",
		Short:        "Push unapplied patches onto the top of the stack",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStack(cmd.Context(), "")
			if err != nil {
				return err
			}

			splog := newSplog()
			err = stackops.Push(cmd.Context(), s, stackops.PushOptions{Patches: args, All: all}, splog.Writer())
			if err != nil {
				return err
			}
			splog.Info("Pushed")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "push all unapplied patches")
	return cmd
}
