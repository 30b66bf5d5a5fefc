package cli

import (
	"github.com/spf13/cobra"

	"patchstack.dev/patchstack/internal/output"
	"patchstack.dev/patchstack/internal/stackops"
)

func newLogCmd() *cobra.Command {
	var showHidden bool

	cmd := &cobra.Command{
		Use:          "log",
		Short:        "List the patches in the stack",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadStack(cmd.Context(), "")
			if err != nil {
				return err
			}

			entries, err := stackops.Log(s, showHidden)
			if err != nil {
				return err
			}

			splog := newSplog()
			for i := len(entries) - 1; i >= 0; i-- {
				e := entries[i]
				marker := statusMarker(e.Status)
				short := e.CommitID
				if len(short) > 8 {
					short = short[:8]
				}
				splog.Info("%s %s  %-30s %s", marker, short, e.Name, e.Subject)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showHidden, "hidden", false, "include hidden patches")
	return cmd
}

func statusMarker(status string) string {
	switch status {
	case "top":
		return output.Colorize(">", 0)
	case "applied":
		return output.Colorize("+", 1)
	case "unapplied":
		return output.Colorize("-", 2)
	case "hidden":
		return output.Colorize("!", 4)
	default:
		return " "
	}
}
