package vcs

import (
	"os"
	"os/exec"
	"strings"

	"patchstack.dev/patchstack/internal/errs"
)

// EditFile opens path in the user's configured editor ($GIT_EDITOR,
// $VISUAL, $EDITOR, falling back to "vi"), connecting the terminal, and
// returns once the editor process exits. Editor invocation is listed as an
// external collaborator (§1). No command in this module calls EditFile:
// refresh's --edit flag does not reach it and commit has no --edit flag.
func EditFile(path string) error {
	editor := firstNonEmpty(os.Getenv("GIT_EDITOR"), os.Getenv("VISUAL"), os.Getenv("EDITOR"), "vi")
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		return &errs.EditorFailError{Editor: editor, Detail: "empty editor command"}
	}
	cmd := exec.Command(fields[0], append(fields[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return &errs.EditorFailError{Editor: editor, Detail: err.Error()}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
