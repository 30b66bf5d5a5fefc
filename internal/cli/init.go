package cli

import (
	"github.com/spf13/cobra"

	"patchstack.dev/patchstack/internal/stack"
)

func newInitCmd() *cobra.Command {
	var branch string

	cmd := &cobra.Command{
		Use:          "init",
		Short:        "Initialize a patch stack on the current branch",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}

			s, err := stack.Initialize(cmd.Context(), repo, branch)
			if err != nil {
				return err
			}

			splog := newSplog()
			splog.Info("Initialized empty patch stack on %s", s.Branch())
			return nil
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "branch to initialize (default: current branch)")
	return cmd
}

func newUninitCmd() *cobra.Command {
	var branch string

	cmd := &cobra.Command{
		Use:          "uninit",
		Short:        "Destroy the patch stack's metadata reference",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}

			if err := stack.Uninit(cmd.Context(), repo, branch); err != nil {
				return err
			}

			splog := newSplog()
			splog.Info("Removed patch stack metadata")
			return nil
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "branch to uninitialize (default: current branch)")
	return cmd
}
