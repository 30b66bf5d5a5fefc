package cli

import (
	"github.com/spf13/cobra"

	"patchstack.dev/patchstack/internal/stackops"
)

func newRenameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "rename OLD NEW",
		Short:        "Rename a patch",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStack(cmd.Context(), "")
			if err != nil {
				return err
			}

			splog := newSplog()
			if err := stackops.Rename(cmd.Context(), s, args[0], args[1], splog.Writer()); err != nil {
				return err
			}
			splog.Info("Renamed %s to %s", args[0], args[1])
			return nil
		},
	}
	return cmd
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "delete PATCH...",
		Short:        "Delete patches from the stack, discarding their commits",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStack(cmd.Context(), "")
			if err != nil {
				return err
			}

			splog := newSplog()
			if err := stackops.Delete(cmd.Context(), s, stackops.DeleteOptions{Patches: args}, splog.Writer()); err != nil {
				return err
			}
			splog.Info("Deleted %d patch(es)", len(args))
			return nil
		},
	}
	return cmd
}
