// Package refresh implements the refresh protocol of §4.5: folding
// index/worktree changes into an existing patch via a synthesized temporary
// patch and a three-way tree merge.
package refresh

import (
	"context"
	"fmt"
	"io"

	"patchstack.dev/patchstack/internal/errs"
	"patchstack.dev/patchstack/internal/patchname"
	"patchstack.dev/patchstack/internal/stack"
	"patchstack.dev/patchstack/internal/txn"
	"patchstack.dev/patchstack/internal/vcs"
)

// Options mirrors the refresh CLI flags of §6.
type Options struct {
	Patch      string // target patch name; "" means top applied
	Paths      []string
	FromIndex  bool
	Force      bool
	Update     bool
	Submodules *bool // not read by Run; stgit.refreshsubmodules is not consulted either, and submodule pointer changes reported by git status are always included
	Annotate   string
	NoVerify   bool
	Message    string // "" keeps the target's existing message
	Edit       bool   // not read by Run; no editor is opened
}

// Result reports the outcome of a refresh that completed (successfully or
// with a reported, non-fatal conflict).
type Result struct {
	Patch     string
	Conflict  *errs.MergeConflictError
	NoChanges bool
}

// Run executes the refresh protocol against s, writing progress lines to
// out.
func Run(ctx context.Context, s *stack.Stack, opts Options, out io.Writer) (*Result, error) {
	if opts.FromIndex && len(opts.Paths) > 0 {
		// S5: the flag combination is disallowed at argument validation.
		// The CLI layer validates this earlier (exit code 2); Run rejects it
		// too so library callers get the same guarantee.
		return nil, &errs.UsageError{Detail: "refresh: --index cannot be combined with a path restriction"}
	}

	target, targetApplied, err := resolveTarget(s, opts.Patch)
	if err != nil {
		return nil, err
	}

	repo := s.Repo()
	branch := s.Branch()
	branchTip, err := repo.BranchTip(branch)
	if err != nil {
		return nil, err
	}
	branchTipTree, err := repo.TreeID(branchTip)
	if err != nil {
		return nil, err
	}

	refreshTree, changedPaths, err := assembleRefreshTree(ctx, s, opts, target, branchTipTree)
	if err != nil {
		return nil, err
	}
	if refreshTree == branchTipTree && len(changedPaths) == 0 {
		// Testable property 5: refresh of a no-op worktree is a no-op.
		return &Result{Patch: target, NoChanges: true}, nil
	}

	tempCommit, err := repo.CommitTree(ctx, vcs.CommitTreeOptions{
		Tree:    refreshTree,
		Parent:  branchTip,
		Message: "refresh-temp",
	})
	if err != nil {
		return nil, err
	}

	tempName := patchname.Uniquify(
		patchname.Make("refresh-temp", true, patchname.MaxLen),
		nil, s.State().AllPatches())

	txA := txn.Transact(s, txn.Options{Output: out})
	if err := txA.NewApplied(ctx, tempName, tempCommit); err != nil {
		return nil, err
	}
	if _, err := txA.Execute(ctx, fmt.Sprintf("refresh: stage %s", tempName)); err != nil {
		return nil, err
	}

	if targetApplied {
		return refreshApplied(ctx, s, target, tempName, opts, out)
	}
	return refreshUnapplied(ctx, s, target, tempName, opts, out)
}

func resolveTarget(s *stack.Stack, patch string) (name string, applied bool, err error) {
	st := s.State()
	if patch == "" {
		top := st.Top()
		if top == "" {
			return "", false, errs.ErrNoAppliedPatches
		}
		return top, true, nil
	}
	if !st.HasPatch(patch) {
		return "", false, &errs.PatchNotFoundError{Name: patch}
	}
	for _, n := range st.Applied {
		if n == patch {
			return patch, true, nil
		}
	}
	return patch, false, nil
}

// assembleRefreshTree implements §4.5 step 2.
func assembleRefreshTree(ctx context.Context, s *stack.Stack, opts Options, target, branchTipTree string) (string, []string, error) {
	repo := s.Repo()

	if opts.FromIndex {
		tree, err := repo.IndexTree(ctx)
		return tree, nil, err
	}

	conflicts, err := repo.ConflictedPaths(ctx)
	if err != nil {
		return "", nil, err
	}
	changed, err := repo.ChangedPaths(ctx, opts.Paths, false)
	if err != nil {
		return "", nil, err
	}
	if pathsIntersect(changed, conflicts) {
		return "", nil, errs.ErrOutstandingConflicts
	}

	if opts.Update {
		targetCommit, err := s.State().CommitOf(target)
		if err != nil {
			return "", nil, err
		}
		parent, err := repo.FirstParent(targetCommit)
		if err != nil {
			return "", nil, err
		}
		targetDiff, err := repo.DiffPaths(ctx, parent, targetCommit)
		if err != nil {
			return "", nil, err
		}
		changed = intersect(changed, targetDiff)
	}

	if !opts.Force {
		indexClean, err := repo.IndexClean(ctx)
		if err != nil {
			return "", nil, err
		}
		worktreeClean, err := repo.WorktreeClean(ctx)
		if err != nil {
			return "", nil, err
		}
		if !indexClean && !worktreeClean {
			return "", nil, errs.ErrDirtyIndex
		}
	}

	// Stage the worktree content of the refresh paths so the tree built
	// from the index carries unstaged edits too.
	if len(changed) > 0 {
		if _, err := repo.Runner().Run(ctx, append([]string{"add", "-A", "--"}, changed...)...); err != nil {
			return "", nil, errs.Wrap("refresh", err)
		}
	}
	// The hook runs before the tree is written; TreeWithPaths then reads
	// the index afresh, picking up anything the hook changed.
	if err := repo.RunPreCommitHook(ctx, opts.NoVerify); err != nil {
		return "", nil, err
	}
	tree, err := repo.TreeWithPaths(ctx, branchTipTree, changed)
	if err != nil {
		return "", nil, err
	}
	if err := repo.SyncIndexPaths(ctx, tree, changed); err != nil {
		return "", nil, err
	}
	return tree, changed, nil
}

// refreshApplied implements §4.5 step 6's applied-target branch.
func refreshApplied(ctx context.Context, s *stack.Stack, target, tempName string, opts Options, out io.Writer) (*Result, error) {
	targetOldCommit, err := s.State().CommitOf(target)
	if err != nil {
		return nil, err
	}
	targetParent, err := s.Repo().FirstParent(targetOldCommit)
	if err != nil {
		return nil, err
	}
	targetMessage := opts.Message
	if targetMessage == "" {
		targetMessage, err = s.Repo().CommitMessage(targetOldCommit)
		if err != nil {
			return nil, err
		}
	}
	targetAuthor, err := s.Repo().CommitAuthor(targetOldCommit)
	if err != nil {
		return nil, err
	}

	applied := s.State().Applied
	idx := indexOf(applied, target)
	popPivot := tempName
	if idx+1 < len(applied) {
		popPivot = applied[idx+1]
	}

	txB := txn.Transact(s, txn.Options{UseIndexAndWorktree: true, AllowConflictsIfSameTop: true, Output: out})
	popped, err := txB.PopPatches(func(n string) bool { return n == popPivot })
	if err != nil {
		return nil, err
	}
	var above []string
	if len(popped) > 0 && popped[len(popped)-1] == tempName {
		above = popped[:len(popped)-1]
	} else {
		above = popped
	}

	if err := txB.PushPatches(ctx, []string{tempName}, false); err != nil {
		if txB.Conflict() != nil {
			return &Result{Patch: target, Conflict: txB.Conflict()}, nil
		}
		return nil, err
	}

	mergedCommit, err := txB.GetPatchCommit(tempName)
	if err != nil {
		return nil, err
	}
	mergedTree, err := s.Repo().TreeID(mergedCommit)
	if err != nil {
		return nil, err
	}
	newTargetCommit, err := s.Repo().CommitTree(ctx, vcs.CommitTreeOptions{
		Tree:    mergedTree,
		Parent:  targetParent,
		Message: targetMessage,
		Author:  targetAuthor,
	})
	if err != nil {
		return nil, err
	}

	txB.DeletePatches(func(n string) bool { return n == tempName })
	if err := txB.UpdatePatch(ctx, target, newTargetCommit); err != nil {
		return nil, err
	}
	if err := txB.PushPatches(ctx, above, false); err != nil {
		if txB.Conflict() != nil {
			return &Result{Patch: target, Conflict: txB.Conflict()}, nil
		}
		return nil, err
	}

	if _, err := txB.Execute(ctx, refreshMessage(target, opts.Annotate)); err != nil {
		return nil, err
	}
	return &Result{Patch: target}, nil
}

// refreshUnapplied implements §4.5 step 6's unapplied-target branch.
func refreshUnapplied(ctx context.Context, s *stack.Stack, target, tempName string, opts Options, out io.Writer) (*Result, error) {
	repo := s.Repo()
	tempCommit, err := s.State().CommitOf(tempName)
	if err != nil {
		return nil, err
	}
	tempParent, err := repo.FirstParent(tempCommit)
	if err != nil {
		return nil, err
	}
	tempParentTree, err := repo.TreeID(tempParent)
	if err != nil {
		return nil, err
	}
	tempTree, err := repo.TreeID(tempCommit)
	if err != nil {
		return nil, err
	}
	targetOldCommit, err := s.State().CommitOf(target)
	if err != nil {
		return nil, err
	}
	targetTree, err := repo.TreeID(targetOldCommit)
	if err != nil {
		return nil, err
	}

	merged, err := repo.ThreeWayMerge(ctx, tempParentTree, targetTree, tempTree)
	if err != nil {
		return nil, err
	}

	txB := txn.Transact(s, txn.Options{UseIndexAndWorktree: true, Output: out})
	if len(merged.Conflicts) > 0 {
		// Leave the temporary patch in place; nothing to execute.
		return &Result{Patch: target, Conflict: &errs.MergeConflictError{Patch: target, Files: merged.Conflicts}}, nil
	}

	if _, err := txB.PopPatches(func(n string) bool { return n == tempName }); err != nil {
		return nil, err
	}

	targetParent, err := repo.FirstParent(targetOldCommit)
	if err != nil {
		return nil, err
	}
	targetMessage := opts.Message
	if targetMessage == "" {
		targetMessage, err = repo.CommitMessage(targetOldCommit)
		if err != nil {
			return nil, err
		}
	}
	targetAuthor, err := repo.CommitAuthor(targetOldCommit)
	if err != nil {
		return nil, err
	}
	newTargetCommit, err := repo.CommitTree(ctx, vcs.CommitTreeOptions{
		Tree:    merged.Tree,
		Parent:  targetParent,
		Message: targetMessage,
		Author:  targetAuthor,
	})
	if err != nil {
		return nil, err
	}

	txB.DeletePatches(func(n string) bool { return n == tempName })
	if err := txB.UpdatePatch(ctx, target, newTargetCommit); err != nil {
		return nil, err
	}
	if _, err := txB.Execute(ctx, refreshMessage(target, opts.Annotate)); err != nil {
		return nil, err
	}
	return &Result{Patch: target}, nil
}

func refreshMessage(target, annotate string) string {
	msg := fmt.Sprintf("refresh %s", target)
	if annotate != "" {
		msg += "\n\n" + annotate
	}
	return msg
}

func indexOf(seq []string, name string) int {
	for i, n := range seq {
		if n == name {
			return i
		}
	}
	return -1
}

func pathsIntersect(a, b []string) bool {
	set := make(map[string]bool, len(b))
	for _, p := range b {
		set[p] = true
	}
	for _, p := range a {
		if set[p] {
			return true
		}
	}
	return false
}

func intersect(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, p := range b {
		set[p] = true
	}
	var out []string
	for _, p := range a {
		if set[p] {
			out = append(out, p)
		}
	}
	return out
}
