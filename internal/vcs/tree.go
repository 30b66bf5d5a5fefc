package vcs

import (
	"context"
	"fmt"
	"os"
	"strings"

	"patchstack.dev/patchstack/internal/errs"
)

// TempIndex is a disposable index file isolated from the repository's
// default index, used for the merges that the transaction engine and
// refresh protocol run without disturbing whatever the user has staged.
// Per §5, "temporary indices are isolated via unique file paths."
type TempIndex struct {
	repo *Repository
	path string
}

// NewTempIndex creates an empty temporary index at a unique path in the
// system temporary directory.
func (r *Repository) NewTempIndex(ctx context.Context) (*TempIndex, error) {
	f, err := os.CreateTemp("", "patchstack-index-*")
	if err != nil {
		return nil, errs.Wrap("vcs", err)
	}
	path := f.Name()
	_ = f.Close()
	_ = os.Remove(path) // git init's the file itself on first write
	return &TempIndex{repo: r, path: path}, nil
}

// Close removes the temporary index file.
func (t *TempIndex) Close() {
	_ = os.Remove(t.path)
}

func (t *TempIndex) env() []string {
	return []string{"GIT_INDEX_FILE=" + t.path}
}

func (t *TempIndex) run(ctx context.Context, args ...string) (string, error) {
	return t.repo.run.RunWithEnv(ctx, t.env(), args...)
}

// ReadTree loads tree into the temporary index wholesale.
func (t *TempIndex) ReadTree(ctx context.Context, tree string) error {
	_, err := t.run(ctx, "read-tree", tree)
	return errs.Wrap("vcs", err)
}

// WriteTree flushes the temporary index to a tree object and returns its id.
func (t *TempIndex) WriteTree(ctx context.Context) (string, error) {
	out, err := t.run(ctx, "write-tree")
	if err != nil {
		return "", errs.Wrap("vcs", err)
	}
	return out, nil
}

// ConflictedPaths lists paths with unmerged stages in the temporary index.
func (t *TempIndex) ConflictedPaths(ctx context.Context) ([]string, error) {
	out, err := t.repo.run.RunWithEnv(ctx, t.env(), "ls-files", "-u")
	if err != nil {
		return nil, errs.Wrap("vcs", err)
	}
	seen := map[string]bool{}
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		path := strings.Join(fields[3:], " ")
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// MergeResult is the outcome of a three-way tree merge.
type MergeResult struct {
	Tree      string
	Conflicts []string
}

// ThreeWayMerge merges base/ours/theirs entirely within a disposable
// temporary index (never touching the repository's real index or worktree)
// and returns either a clean merged tree or the list of conflicting paths.
// This realizes §4.4's "three-way merge (base, ours, theirs)" and the
// refresh protocol's unapplied-target merge in §4.5 step 6.
func (r *Repository) ThreeWayMerge(ctx context.Context, base, ours, theirs string) (*MergeResult, error) {
	idx, err := r.NewTempIndex(ctx)
	if err != nil {
		return nil, err
	}
	defer idx.Close()

	if _, err := idx.run(ctx, "read-tree", "-m", "--aggressive", base, ours, theirs); err != nil {
		// read-tree exits nonzero for conflicts too; inspect the index
		// before deciding this is a hard failure.
		conflicts, cErr := idx.ConflictedPaths(ctx)
		if cErr == nil && len(conflicts) > 0 {
			return &MergeResult{Conflicts: conflicts}, nil
		}
		return nil, errs.Wrap("vcs", err)
	}

	conflicts, err := idx.ConflictedPaths(ctx)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return &MergeResult{Conflicts: conflicts}, nil
	}

	tree, err := idx.WriteTree(ctx)
	if err != nil {
		return nil, err
	}
	return &MergeResult{Tree: tree}, nil
}

// MergeIntoWorkingIndex performs the three-way merge directly against the
// repository's real index and worktree (unlike ThreeWayMerge, which is
// isolated in a disposable index), used by the transaction engine's
// push_patches so that a conflict actually lands in the files the user
// resolves conflicts in.
func (r *Repository) MergeIntoWorkingIndex(ctx context.Context, base, ours, theirs string) (*MergeResult, error) {
	if _, err := r.run.Run(ctx, "read-tree", "-m", "-u", "--aggressive", base, ours, theirs); err != nil {
		conflicts, cErr := r.ConflictedPaths(ctx)
		if cErr == nil && len(conflicts) > 0 {
			return &MergeResult{Conflicts: conflicts}, nil
		}
		return nil, errs.Wrap("vcs", err)
	}
	conflicts, err := r.ConflictedPaths(ctx)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return &MergeResult{Conflicts: conflicts}, nil
	}
	tree, err := r.run.Run(ctx, "write-tree")
	if err != nil {
		return nil, errs.Wrap("vcs", err)
	}
	return &MergeResult{Tree: tree}, nil
}

// TreeWithPaths builds a new tree starting from baseTree, replacing the
// listed paths with their current index-file content (or removing them if
// the index file says deleted). It is the refresh protocol's "build the new
// tree in a temporary index seeded from the branch-tip tree plus the chosen
// paths" (§4.5 step 2).
func (r *Repository) TreeWithPaths(ctx context.Context, baseTree string, paths []string) (string, error) {
	idx, err := r.NewTempIndex(ctx)
	if err != nil {
		return "", err
	}
	defer idx.Close()

	if _, err := idx.run(ctx, "read-tree", baseTree); err != nil {
		return "", errs.Wrap("vcs", err)
	}

	if len(paths) == 0 {
		return idx.WriteTree(ctx)
	}

	// Pull the requested paths' current index entries (stage 0) from the
	// repository's real index into the temp index; a path absent from the
	// real index is treated as a deletion.
	realEntries, err := r.readIndexEntries(ctx, paths)
	if err != nil {
		return "", err
	}
	for _, p := range paths {
		if e, ok := realEntries[p]; ok {
			if _, err := idx.run(ctx, "update-index", "--add", "--cacheinfo",
				fmt.Sprintf("%s,%s,%s", e.mode, e.sha, p)); err != nil {
				return "", errs.Wrap("vcs", err)
			}
		} else {
			_, _ = idx.run(ctx, "update-index", "--force-remove", p)
		}
	}

	return idx.WriteTree(ctx)
}

type indexEntry struct {
	mode string
	sha  string
}

func (r *Repository) readIndexEntries(ctx context.Context, paths []string) (map[string]indexEntry, error) {
	out, err := r.run.Run(ctx, "ls-files", "--stage")
	if err != nil {
		return nil, errs.Wrap("vcs", err)
	}
	want := map[string]bool{}
	for _, p := range paths {
		want[p] = true
	}
	result := map[string]indexEntry{}
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		path := strings.Join(fields[3:], " ")
		if want[path] {
			result[path] = indexEntry{mode: fields[0], sha: fields[1]}
		}
	}
	return result, nil
}

// MakeSingleBlobTree builds a tree object containing exactly one entry,
// filename pointing at blobID. This is how the stack-state metadata commit's
// tree (§6: "a commit whose tree contains a single blob encoding the stack
// state") is constructed.
func (r *Repository) MakeSingleBlobTree(ctx context.Context, blobID, filename string) (string, error) {
	entry := fmt.Sprintf("100644 blob %s\t%s\n", blobID, filename)
	out, err := r.run.RunWithInput(ctx, entry, "mktree")
	if err != nil {
		return "", errs.Wrap("vcs", err)
	}
	return out, nil
}

// IndexTree writes the current default index as a tree (the `--from-index`
// refresh source in §4.5 step 2).
func (r *Repository) IndexTree(ctx context.Context) (string, error) {
	out, err := r.run.Run(ctx, "write-tree")
	if err != nil {
		return "", errs.Wrap("vcs", err)
	}
	return out, nil
}

// SyncIndexPaths resets the whole real index to tree and then rewrites the
// listed paths in the worktree from it, so the default index agrees with the
// recorded tree (§4.5 step 2). With no paths only the index is reset.
func (r *Repository) SyncIndexPaths(ctx context.Context, tree string, paths []string) error {
	if len(paths) == 0 {
		_, err := r.run.Run(ctx, "read-tree", tree)
		return errs.Wrap("vcs", err)
	}
	args := append([]string{"checkout-index", "--index", "--force", "--"}, paths...)
	// Reset every index entry to tree first (read-tree takes no pathspec),
	// then materialize the listed paths into the worktree.
	if _, err := r.run.Run(ctx, append([]string{"read-tree", "--reset", "-i", tree}, "--")...); err != nil {
		return errs.Wrap("vcs", err)
	}
	_, err := r.run.Run(ctx, args...)
	return errs.Wrap("vcs", err)
}
