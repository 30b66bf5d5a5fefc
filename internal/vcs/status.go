package vcs

import (
	"context"
	"strings"

	"patchstack.dev/patchstack/internal/errs"
)

// StatusEntry is one line of porcelain status: a changed path and the
// index/worktree status codes git assigns it.
type StatusEntry struct {
	IndexStatus    byte
	WorktreeStatus byte
	Path           string
}

// Conflicted reports whether this entry represents an unmerged path.
func (s StatusEntry) Conflicted() bool {
	return s.IndexStatus == 'U' || s.WorktreeStatus == 'U' ||
		(s.IndexStatus == 'A' && s.WorktreeStatus == 'A') ||
		(s.IndexStatus == 'D' && s.WorktreeStatus == 'D')
}

// Status returns the porcelain v1 status entries for the repository,
// optionally restricted to pathspecs.
func (r *Repository) Status(ctx context.Context, paths []string) ([]StatusEntry, error) {
	args := []string{"status", "--porcelain=1", "-z"}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}
	out, err := r.run.RunRaw(ctx, args...)
	if err != nil {
		return nil, errs.Wrap("vcs", err)
	}
	var entries []StatusEntry
	for _, rec := range strings.Split(strings.TrimRight(out, "\x00"), "\x00") {
		if len(rec) < 3 {
			continue
		}
		entries = append(entries, StatusEntry{
			IndexStatus:    rec[0],
			WorktreeStatus: rec[1],
			Path:           rec[3:],
		})
	}
	return entries, nil
}

// IndexClean reports whether the index has staged changes relative to HEAD.
func (r *Repository) IndexClean(ctx context.Context) (bool, error) {
	entries, err := r.Status(ctx, nil)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.IndexStatus != ' ' && e.IndexStatus != '?' {
			return false, nil
		}
	}
	return true, nil
}

// WorktreeClean reports whether tracked files have unstaged modifications.
// Untracked files do not count as worktree dirt for the purposes of §4.3's
// check_worktree_clean (a fresh checkout with stray scratch files is still
// "clean" from the stack's point of view).
func (r *Repository) WorktreeClean(ctx context.Context) (bool, error) {
	entries, err := r.Status(ctx, nil)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.WorktreeStatus != ' ' && e.WorktreeStatus != '?' {
			return false, nil
		}
	}
	return true, nil
}

// CheckIndexClean implements §4.3 check_index_clean.
func (r *Repository) CheckIndexClean(ctx context.Context) error {
	clean, err := r.IndexClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return errs.ErrDirtyIndex
	}
	return nil
}

// CheckWorktreeClean implements §4.3 check_worktree_clean.
func (r *Repository) CheckWorktreeClean(ctx context.Context) error {
	clean, err := r.WorktreeClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return errs.ErrDirtyWorktree
	}
	return nil
}

// ConflictedPaths returns paths in the real index with unmerged stages.
func (r *Repository) ConflictedPaths(ctx context.Context) ([]string, error) {
	entries, err := r.Status(ctx, nil)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.Conflicted() {
			paths = append(paths, e.Path)
		}
	}
	return paths, nil
}

// ChangedPaths returns paths with either staged or unstaged changes
// (excluding untracked, unless includeUntracked is set), intersected with
// pathspecs if given. This backs §4.5 step 2's status-set computation.
func (r *Repository) ChangedPaths(ctx context.Context, pathspecs []string, includeUntracked bool) ([]string, error) {
	entries, err := r.Status(ctx, pathspecs)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		isUntracked := e.IndexStatus == '?' && e.WorktreeStatus == '?'
		if isUntracked && !includeUntracked {
			continue
		}
		if e.IndexStatus == ' ' && e.WorktreeStatus == ' ' {
			continue
		}
		paths = append(paths, e.Path)
	}
	return paths, nil
}

// DiffPaths returns the paths that differ between two commits/trees, used
// to intersect the refresh status set with the target patch's own diff
// when --update is given (§4.5 step 2).
func (r *Repository) DiffPaths(ctx context.Context, from, to string) ([]string, error) {
	out, err := r.run.RunRaw(ctx, "diff", "--name-only", "-z", from, to)
	if err != nil {
		return nil, errs.Wrap("vcs", err)
	}
	var paths []string
	for _, p := range strings.Split(strings.TrimRight(out, "\x00"), "\x00") {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// TreesEqual reports whether two commits have identical trees, used by the
// commit protocol's empty-patch guard (§4.6 step 2).
func (r *Repository) TreesEqual(a, b string) (bool, error) {
	ta, err := r.TreeID(a)
	if err != nil {
		return false, err
	}
	tb, err := r.TreeID(b)
	if err != nil {
		return false, err
	}
	return ta == tb, nil
}
