package cli

import (
	"github.com/spf13/cobra"

	"patchstack.dev/patchstack/internal/errs"
	"patchstack.dev/patchstack/internal/refresh"
)

func newRefreshCmd() *cobra.Command {
	var (
		patch        string
		update       bool
		fromIndex    bool
		force        bool
		annotate     string
		noVerify     bool
		message      string
		edit         bool
		submodules   bool
		noSubmodules bool
	)

	cmd := &cobra.Command{
		Use:          "refresh [PATH...]",
		Short:        "Absorb index/worktree changes into a patch",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// S5: --index excludes a path restriction (and, per §6, the
			// other --index-incompatible flags).
			if fromIndex && len(args) > 0 {
				return &errs.UsageError{Detail: "refresh: --index cannot be combined with a path restriction"}
			}
			if fromIndex && (update || force || submodules || noSubmodules) {
				return &errs.UsageError{Detail: "refresh: --index cannot be combined with --update, --force, --submodules or --no-submodules"}
			}

			s, err := loadStack(cmd.Context(), "")
			if err != nil {
				return err
			}

			var subs *bool
			switch {
			case submodules:
				v := true
				subs = &v
			case noSubmodules:
				v := false
				subs = &v
			}

			splog := newSplog()
			opts := refresh.Options{
				Patch:      patch,
				Paths:      args,
				FromIndex:  fromIndex,
				Force:      force,
				Update:     update,
				Submodules: subs,
				Annotate:   annotate,
				NoVerify:   noVerify,
				Message:    message,
				Edit:       edit,
			}

			result, err := refresh.Run(cmd.Context(), s, opts, splog.Writer())
			if err != nil {
				return err
			}
			if result.NoChanges {
				splog.Info("Nothing to refresh")
				return nil
			}
			if result.Conflict != nil {
				splog.Diag("%s", result.Conflict.Error())
				return nil
			}
			splog.Info("Refreshed %s", result.Patch)
			return nil
		},
	}

	cmd.Flags().StringVarP(&patch, "patch", "p", "", "target patch (default: top)")
	cmd.Flags().BoolVarP(&update, "update", "u", false, "only include files already in the patch")
	cmd.Flags().BoolVarP(&fromIndex, "index", "i", false, "take the refreshed tree from the index")
	cmd.Flags().BoolVarP(&force, "force", "F", false, "allow a dirty index and worktree")
	cmd.Flags().StringVarP(&annotate, "annotate", "a", "", "annotate the patch log entry")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "skip the pre-commit hook")
	cmd.Flags().StringVar(&message, "message", "", "override the patch message")
	cmd.Flags().BoolVarP(&edit, "edit", "e", false, "accepted but not acted on: no editor is opened for the patch message")
	cmd.Flags().BoolVarP(&submodules, "submodules", "s", false, "accepted; submodule pointer changes are always included")
	cmd.Flags().BoolVar(&noSubmodules, "no-submodules", false, "accepted but not acted on: submodule pointer changes are always included")
	return cmd
}
