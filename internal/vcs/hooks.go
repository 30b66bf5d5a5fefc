package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"patchstack.dev/patchstack/internal/errs"
)

// RunHook invokes the named repository hook if it exists and is executable,
// with stdin/stdout/stderr connected to the terminal. Hook execution is
// listed as an external collaborator in the core's scope (§1); this is the
// minimal, teacher-style subprocess wrapper the core calls through, not a
// hook-authoring framework.
func (r *Repository) RunHook(ctx context.Context, name string, args ...string) error {
	dir, err := r.gitDir(ctx)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "hooks", name)
	info, statErr := os.Stat(path)
	if statErr != nil || info.IsDir() || info.Mode()&0o111 == 0 {
		return nil // no hook installed, or not executable: a no-op
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = r.root
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return &errs.HookError{Hook: name, Detail: err.Error()}
	}
	return nil
}

// RunPreCommitHook runs "pre-commit" unless noVerify is set, per §6's
// "invoked before writing the refreshed tree unless --no-verify". Callers
// must re-read the index from disk afterward, since the hook is allowed to
// modify it.
func (r *Repository) RunPreCommitHook(ctx context.Context, noVerify bool) error {
	if noVerify {
		return nil
	}
	return r.RunHook(ctx, "pre-commit")
}
