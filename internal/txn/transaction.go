// Package txn implements the transaction engine of §4.4: a staged mutation
// of a loaded stack, executed atomically with compare-and-swap on the
// metadata and branch references.
package txn

import (
	"context"
	"fmt"
	"io"

	"patchstack.dev/patchstack/internal/errs"
	"patchstack.dev/patchstack/internal/stack"
	"patchstack.dev/patchstack/internal/vcs"
)

// Options configures a transaction before Transact builds it, mirroring the
// builder-style configuration in §4.4.
type Options struct {
	// UseIndexAndWorktree permits push/pop to mutate the working copy
	// (merges land in the real index/worktree). When false, operations
	// must be pure commit-graph rearrangement.
	UseIndexAndWorktree bool
	// AllowConflictsIfSameTop lets a transaction that ends with the same
	// top it started with commit despite leftover conflicts.
	AllowConflictsIfSameTop bool
	// Output receives progress lines (with_output_stream).
	Output io.Writer
}

// Transaction is the staged mutation exposed to a caller's closure.
type Transaction struct {
	stack   *stack.Stack
	repo    *vcs.Repository
	opts    Options
	staged  stack.State
	mutated bool

	originalTop string
	conflict    *errs.MergeConflictError

	// originalBottomCommit is the commit id of the patch that was
	// bottommost in Applied when the transaction was opened, or "" if
	// Applied was already empty. It anchors stackBase() so that a
	// transaction which stages popping the whole applied sequence (e.g.
	// commitPatches rearranging patches to the bottom) can still recover
	// the true stack base rather than mistaking the pre-transaction Head
	// (the *original top*) for it.
	originalBottomCommit string
	// preTxnHead is the pre-transaction State().Head, used as the stack
	// base only when Applied was already empty at Transact() time — the
	// one case where Head does equal the base (§3 invariant 4).
	preTxnHead string
}

// Transact opens a transaction over s and returns it. The caller stages
// mutations by calling the Transaction's methods; Transact does not execute
// them — the caller must call Execute explicitly, mirroring §4.4's "user
// closure... all operations succeed-or-fail atomically at execute time".
func Transact(s *stack.Stack, opts Options) *Transaction {
	t := &Transaction{
		stack:       s,
		repo:        s.Repo(),
		opts:        opts,
		staged:      s.State(),
		originalTop: s.State().Top(),
	}
	if applied := s.State().Applied; len(applied) > 0 {
		t.originalBottomCommit = s.State().Patches[applied[0]]
	} else {
		t.preTxnHead = s.State().Head
	}
	return t
}

func (t *Transaction) logf(format string, args ...interface{}) {
	if t.opts.Output == nil {
		return
	}
	_, _ = io.WriteString(t.opts.Output, fmt.Sprintf(format, args...))
}

// Applied returns the staged applied sequence.
func (t *Transaction) Applied() []string { return append([]string(nil), t.staged.Applied...) }

// Unapplied returns the staged unapplied sequence.
func (t *Transaction) Unapplied() []string { return append([]string(nil), t.staged.Unapplied...) }

// Hidden returns the staged hidden sequence.
func (t *Transaction) Hidden() []string { return append([]string(nil), t.staged.Hidden...) }

// GetPatchCommit returns the commit id staged for name.
func (t *Transaction) GetPatchCommit(name string) (string, error) {
	return t.staged.CommitOf(name)
}

// Conflict returns the conflict captured by the last push_patches call that
// left merge conflicts, or nil if none.
func (t *Transaction) Conflict() *errs.MergeConflictError { return t.conflict }

// PushPatches reapplies named patches in order onto the current staged top
// (§4.4 push_patches). For each patch, it three-way merges (base = parent
// of the patch's original commit, ours = current top's tree, theirs = the
// patch's tree) and creates a new commit carrying the merged tree with the
// patch's original message/author. On the first conflict it stops, leaving
// whatever was pushed so far staged, and returns a *errs.MergeConflictError
// (non-fatal status, not a transaction failure).
func (t *Transaction) PushPatches(ctx context.Context, names []string, isNew bool) error {
	for _, name := range names {
		commitID, err := t.staged.CommitOf(name)
		if err != nil {
			return err
		}
		theirsTree, err := t.repo.TreeID(commitID)
		if err != nil {
			return err
		}
		parent, err := t.repo.FirstParent(commitID)
		if err != nil {
			return err
		}
		var baseTree string
		if parent != "" {
			baseTree, err = t.repo.TreeID(parent)
		} else {
			baseTree, err = t.repo.TreeID(commitID) // root patch: nothing to merge against
		}
		if err != nil {
			return err
		}

		oursTree, err := t.currentTopTree(ctx)
		if err != nil {
			return err
		}

		var merged *vcs.MergeResult
		if t.opts.UseIndexAndWorktree {
			merged, err = t.repo.MergeIntoWorkingIndex(ctx, baseTree, oursTree, theirsTree)
		} else {
			merged, err = t.repo.ThreeWayMerge(ctx, baseTree, oursTree, theirsTree)
		}
		if err != nil {
			return err
		}
		if len(merged.Conflicts) > 0 {
			t.conflict = &errs.MergeConflictError{Patch: name, Files: merged.Conflicts}
			t.logf("conflict: patch %q did not apply cleanly\n", name)
			return t.conflict
		}

		author, err := t.repo.CommitAuthor(commitID)
		if err != nil {
			return err
		}
		message, err := t.repo.CommitMessage(commitID)
		if err != nil {
			return err
		}
		newTop, err := t.currentTopCommit()
		newCommit, err2 := t.repo.CommitTree(ctx, vcs.CommitTreeOptions{
			Tree:    merged.Tree,
			Parent:  newTop,
			Message: message,
			Author:  author,
		})
		if err != nil {
			return err
		}
		if err2 != nil {
			return err2
		}

		t.staged = t.staged.WithPatch(name, newCommit)
		t.staged = t.staged.WithApplied(append(t.staged.Applied, name))
		t.staged = t.staged.WithUnapplied(remove(t.staged.Unapplied, name))
		t.staged = t.staged.WithHidden(remove(t.staged.Hidden, name))
		t.mutated = true
		t.logf("> %s\n", name)
	}
	return nil
}

// PopPatches removes patches matching predicate from the staged applied
// sequence, which must be contiguous from the top, and prepends them to
// unapplied in their stack order (the lowest popped patch first).
// Returns the full list of patches that were popped, including any above
// the matched ones that had to come off to reach them (§4.4 pop_patches).
func (t *Transaction) PopPatches(predicate func(name string) bool) ([]string, error) {
	applied := t.staged.Applied
	firstMatch := -1
	for i, name := range applied {
		if predicate(name) {
			firstMatch = i
			break
		}
	}
	if firstMatch == -1 {
		return nil, nil
	}
	popped := append([]string(nil), applied[firstMatch:]...)

	// prepend in stack order: lowest popped patch first
	newUnapplied := make([]string, 0, len(popped)+len(t.staged.Unapplied))
	newUnapplied = append(newUnapplied, popped...)
	newUnapplied = append(newUnapplied, t.staged.Unapplied...)

	t.staged = t.staged.WithApplied(append([]string(nil), applied[:firstMatch]...))
	t.staged = t.staged.WithUnapplied(newUnapplied)
	t.mutated = true
	return popped, nil
}

// NewApplied inserts a new patch at the top with commitID, whose first
// parent must equal the current staged top (§4.4 new_applied).
func (t *Transaction) NewApplied(ctx context.Context, name, commitID string) error {
	if t.staged.HasPatch(name) {
		return &errs.PatchNameExistsError{Name: name}
	}
	parent, err := t.repo.FirstParent(commitID)
	if err != nil {
		return err
	}
	top := t.currentTop()
	if top != "" && parent != t.staged.Patches[top] {
		return &errs.TransactionError{Reason: "new patch's parent does not match the current top"}
	}
	t.staged = t.staged.WithPatch(name, commitID)
	t.staged = t.staged.WithApplied(append(t.staged.Applied, name))
	t.mutated = true
	return nil
}

// UpdatePatch replaces the commit associated with name. If name is applied
// and not the top, every applied patch above it is popped and re-pushed so
// the chain re-merges cleanly (§4.4 update_patch).
func (t *Transaction) UpdatePatch(ctx context.Context, name, newCommitID string) error {
	if !t.staged.HasPatch(name) {
		return &errs.PatchNotFoundError{Name: name}
	}
	above := t.appliedAbove(name)
	if len(above) > 0 {
		if _, err := t.PopPatches(func(n string) bool { return n == name }); err != nil {
			return err
		}
		// PopPatches already removed name along with everything above it;
		// restore name itself to unapplied->applied with the new commit,
		// then re-push what was above.
		t.staged = t.staged.WithUnapplied(remove(t.staged.Unapplied, name))
		t.staged = t.staged.WithPatch(name, newCommitID)
		t.staged = t.staged.WithApplied(append(t.staged.Applied, name))
		return t.PushPatches(ctx, above, false)
	}
	t.staged = t.staged.WithPatch(name, newCommitID)
	t.mutated = true
	return nil
}

// RenamePatch implements §4.4 rename_patch.
func (t *Transaction) RenamePatch(old, new string) error {
	next, err := t.staged.RenamePatch(old, new)
	if err != nil {
		return err
	}
	t.staged = next
	t.mutated = true
	return nil
}

// DeletePatches removes every patch matching predicate from whichever
// sequence holds it, returning the deleted names (§4.4 delete_patches).
func (t *Transaction) DeletePatches(predicate func(name string) bool) []string {
	var deleted []string
	filter := func(seq []string) []string {
		out := seq[:0:0]
		for _, n := range seq {
			if predicate(n) {
				deleted = append(deleted, n)
				continue
			}
			out = append(out, n)
		}
		return out
	}
	t.staged = t.staged.WithApplied(filter(t.staged.Applied))
	t.staged = t.staged.WithUnapplied(filter(t.staged.Unapplied))
	t.staged = t.staged.WithHidden(filter(t.staged.Hidden))
	for _, n := range deleted {
		t.staged = t.staged.WithoutPatch(n)
	}
	if len(deleted) > 0 {
		t.mutated = true
	}
	return deleted
}

// Execute implements §4.4 execute(reflog_msg): if nothing was staged,
// returns success with no new commit; otherwise writes the new state and
// CAS-advances the metadata ref, then (if the top changed) the branch ref.
// A CAS failure on the metadata ref returns *errs.TransactionError and
// leaves every user-visible reference unchanged. If moving the branch fails
// after that, its error is returned and the metadata ref stays advanced.
//
// Partial-success rule: when AllowConflictsIfSameTop is set and a push left
// a conflict, execute still records the state change as long as the final
// staged top equals the original top — the conflict is surfaced to the
// caller as a non-error status, not rolled back.
func (t *Transaction) Execute(ctx context.Context, reflogMsg string) (*stack.Stack, error) {
	if !t.mutated {
		return t.stack, nil
	}

	if t.conflict != nil {
		sameTop := t.staged.Top() == t.originalTop
		if !(t.opts.AllowConflictsIfSameTop && sameTop) {
			return nil, &errs.TransactionError{Reason: t.conflict.Error()}
		}
	}

	newHead := t.staged.TopCommit()
	if newHead == "" {
		base, err := t.stackBase()
		if err != nil {
			return nil, err
		}
		newHead = base
	}

	if err := t.stack.AdvanceState(ctx, t.staged.WithHead(newHead, t.stack.StateCommit()), reflogMsg, reflogMsg); err != nil {
		return nil, err
	}

	currentTip, err := t.repo.BranchTip(t.stack.Branch())
	if err == nil && currentTip != newHead {
		if err := t.repo.MoveBranch(ctx, t.stack.Branch(), newHead, reflogMsg); err != nil {
			return nil, err
		}
	}

	return t.stack, nil
}

func (t *Transaction) currentTop() string { return t.staged.Top() }

func (t *Transaction) currentTopCommit() (string, error) {
	top := t.staged.Top()
	if top == "" {
		return t.stackBase()
	}
	return t.staged.Patches[top], nil
}

func (t *Transaction) currentTopTree(ctx context.Context) (string, error) {
	commitID, err := t.currentTopCommit()
	if err != nil {
		return "", err
	}
	return t.repo.TreeID(commitID)
}

// stackBase returns the true stack base — the commit the
// originally-bottommost applied patch was parented on when the transaction
// opened, or the pre-transaction Head if Applied was already empty (the one
// case where Head equals the base, §3 invariant 4). It is only consulted
// when there is no staged applied patch to anchor against, e.g. when
// commitPatches pops the whole applied sequence before re-pushing patches
// that stay in the stack. Using the pre-transaction Head unconditionally
// here would be wrong once anything has been popped: Head is the *original
// top*, not the base below the original bottom patch.
func (t *Transaction) stackBase() (string, error) {
	if t.originalBottomCommit == "" {
		return t.preTxnHead, nil
	}
	return t.repo.FirstParent(t.originalBottomCommit)
}

func (t *Transaction) appliedAbove(name string) []string {
	idx := -1
	for i, n := range t.staged.Applied {
		if n == name {
			idx = i
			break
		}
	}
	if idx == -1 || idx == len(t.staged.Applied)-1 {
		return nil
	}
	return append([]string(nil), t.staged.Applied[idx+1:]...)
}

func remove(seq []string, name string) []string {
	out := seq[:0:0]
	for _, n := range seq {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
