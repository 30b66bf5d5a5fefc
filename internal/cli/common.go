package cli

import (
	"context"
	"fmt"

	"patchstack.dev/patchstack/internal/output"
	"patchstack.dev/patchstack/internal/stack"
	"patchstack.dev/patchstack/internal/vcs"
)

// openRepo opens the Git repository rooted at (or above) the current
// directory.
func openRepo() (*vcs.Repository, error) {
	repo, err := vcs.Open(".")
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	return repo, nil
}

// loadStack opens the repository and loads the patch stack bound to
// branch (the current branch when branch is empty).
func loadStack(ctx context.Context, branch string) (*stack.Stack, error) {
	repo, err := openRepo()
	if err != nil {
		return nil, err
	}
	return stack.Load(ctx, repo, branch)
}

func newSplog() *output.Splog {
	return output.New()
}
