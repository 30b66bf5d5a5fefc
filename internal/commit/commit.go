// Package commit implements the commit protocol of §4.6: rearranging
// selected patches to the stack bottom and finalizing them into base
// history (removing them from the stack while leaving their commits as
// ordinary ancestors of the new bottom applied patch).
package commit

import (
	"context"
	"fmt"
	"io"
	"sort"

	"patchstack.dev/patchstack/internal/errs"
	"patchstack.dev/patchstack/internal/stack"
	"patchstack.dev/patchstack/internal/txn"
)

// Options mirrors the commit CLI flags of §6. Patches, Number and All are
// mutually exclusive; the caller (internal/cli) is responsible for
// rejecting bad usage (exit code 2) before this package is ever invoked.
type Options struct {
	Patches []string
	Number  int
	// NumberGiven distinguishes an explicit `-n 0` from the flag being
	// absent (both leave Number at its zero value). Required because `-n
	// 0` is an explicit no-op, grounded in original_source's
	// src/cmd/commit.rs (`number == 0` returns `Ok(())` without touching
	// the stack), not "flag not given, fall back to the bottommost
	// patch".
	NumberGiven bool
	All         bool
	AllowEmpty  bool
}

// Run executes the commit protocol against s.
func Run(ctx context.Context, s *stack.Stack, opts Options, out io.Writer) error {
	if opts.NumberGiven && opts.Number == 0 {
		return nil
	}

	list, err := resolveList(s, opts)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return errs.ErrNoAppliedPatches
	}

	if !opts.AllowEmpty {
		var empty []string
		for _, name := range list {
			commitID, err := s.State().CommitOf(name)
			if err != nil {
				return err
			}
			parent, err := s.Repo().FirstParent(commitID)
			if err != nil {
				return err
			}
			if parent == "" {
				continue
			}
			eq, err := s.Repo().TreesEqual(commitID, parent)
			if err != nil {
				return err
			}
			if eq {
				empty = append(empty, name)
			}
		}
		if len(empty) > 0 {
			return &errs.EmptyPatchesError{Names: empty}
		}
	}

	if err := s.CheckHeadTopMismatch(); err != nil {
		return err
	}

	t := txn.Transact(s, txn.Options{UseIndexAndWorktree: true, AllowConflictsIfSameTop: true, Output: out})
	if err := commitPatches(ctx, t, list); err != nil {
		return err
	}
	_, err = t.Execute(ctx, "commit")
	return err
}

// resolveList implements §4.6 step 1: explicit list, -n count of
// bottom-most applied, --all, or (default) the single bottommost applied
// patch. An explicit list is reordered to match the existing
// applied-then-unapplied order.
func resolveList(s *stack.Stack, opts Options) ([]string, error) {
	applied := s.State().Applied

	switch {
	case len(opts.Patches) > 0:
		order := s.State().AppliedAndUnapplied()
		pos := make(map[string]int, len(order))
		for i, n := range order {
			pos[n] = i
		}
		list := append([]string(nil), opts.Patches...)
		for _, n := range list {
			if !s.State().HasPatch(n) {
				return nil, &errs.PatchNotFoundError{Name: n}
			}
		}
		sort.SliceStable(list, func(i, j int) bool { return pos[list[i]] < pos[list[j]] })
		return list, nil

	case opts.NumberGiven:
		n := opts.Number
		if n > len(applied) {
			n = len(applied)
		}
		return append([]string(nil), applied[:n]...), nil

	case opts.All:
		return append([]string(nil), applied...), nil

	default:
		if len(applied) == 0 {
			return nil, nil
		}
		return []string{applied[0]}, nil
	}
}

// commitPatches rearranges list to the bottom of applied and then removes
// them from the stack state entirely, per §4.6 step 4. It does so by
// popping the whole applied sequence, re-pushing list first (re-parenting
// them, unchanged in content, directly onto the stack base) and then the
// remaining originally-applied patches on top, and finally deleting list
// from the stack — their commits remain as ordinary ancestors of whatever
// is now the bottom applied patch.
func commitPatches(ctx context.Context, t *txn.Transaction, list []string) error {
	inList := make(map[string]bool, len(list))
	for _, n := range list {
		inList[n] = true
	}

	popped, err := t.PopPatches(func(string) bool { return true })
	if err != nil {
		return err
	}
	if popped == nil {
		popped = t.Applied()
	}

	var rest []string
	for _, n := range popped {
		if !inList[n] {
			rest = append(rest, n)
		}
	}

	if err := t.PushPatches(ctx, list, false); err != nil {
		if t.Conflict() != nil {
			return fmt.Errorf("commit: %w", t.Conflict())
		}
		return err
	}
	if err := t.PushPatches(ctx, rest, false); err != nil {
		if t.Conflict() != nil {
			return fmt.Errorf("commit: %w", t.Conflict())
		}
		return err
	}

	t.DeletePatches(func(n string) bool { return inList[n] })
	return nil
}
