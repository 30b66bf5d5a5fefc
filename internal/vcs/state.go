package vcs

import (
	"context"
	"os"
	"path/filepath"

	"patchstack.dev/patchstack/internal/errs"
)

// RepoState names the mode the repository's git directory says it is in,
// per §4.3's check_repository_state.
type RepoState string

const (
	StateClean         RepoState = "clean"
	StateMerge         RepoState = "merge"
	StateRebase        RepoState = "rebase"
	StateCherryPick    RepoState = "cherry-pick"
	StateBisect        RepoState = "bisect"
	StateRevert        RepoState = "revert"
	StateMailboxApply  RepoState = "mailbox-apply"
)

// gitDir returns the repository's .git directory, resolving the worktree
// form ".git" file when present.
func (r *Repository) gitDir(ctx context.Context) (string, error) {
	out, err := r.run.Run(ctx, "rev-parse", "--git-dir")
	if err != nil {
		return "", errs.Wrap("vcs", err)
	}
	if filepath.IsAbs(out) {
		return out, nil
	}
	return filepath.Join(r.root, out), nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// State detects the repository's current mode by checking for the
// well-known marker files git leaves in the git directory while an
// operation is suspended mid-flight.
func (r *Repository) State(ctx context.Context) (RepoState, error) {
	dir, err := r.gitDir(ctx)
	if err != nil {
		return "", err
	}

	switch {
	case exists(filepath.Join(dir, "MERGE_HEAD")):
		return StateMerge, nil
	case exists(filepath.Join(dir, "CHERRY_PICK_HEAD")):
		return StateCherryPick, nil
	case exists(filepath.Join(dir, "REVERT_HEAD")):
		return StateRevert, nil
	case exists(filepath.Join(dir, "BISECT_LOG")):
		return StateBisect, nil
	case exists(filepath.Join(dir, "rebase-merge")):
		return StateRebase, nil
	case exists(filepath.Join(dir, "rebase-apply", "rebasing")):
		return StateRebase, nil
	case exists(filepath.Join(dir, "rebase-apply")):
		return StateMailboxApply, nil
	default:
		return StateClean, nil
	}
}

// CheckRepositoryState implements §4.3 check_repository_state(conflicts_okay):
// clean is always fine; merge is fine when conflictsOkay; anything else
// fails with ActiveRepositoryStateError.
func (r *Repository) CheckRepositoryState(ctx context.Context, conflictsOkay bool) error {
	state, err := r.State(ctx)
	if err != nil {
		return err
	}
	switch state {
	case StateClean:
		return nil
	case StateMerge:
		if conflictsOkay {
			return nil
		}
		return &errs.ActiveRepositoryStateError{Mode: string(state)}
	default:
		return &errs.ActiveRepositoryStateError{Mode: string(state)}
	}
}
