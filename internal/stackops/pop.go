package stackops

import (
	"context"
	"io"

	"patchstack.dev/patchstack/internal/errs"
	"patchstack.dev/patchstack/internal/stack"
	"patchstack.dev/patchstack/internal/txn"
)

// PopOptions controls which applied patches to pop off the top of the
// stack.
type PopOptions struct {
	// Patches names the patches to pop; everything above the lowest named
	// patch pops too, per the transaction engine's contiguous-from-top
	// pop contract (§4.4). Empty means pop the single topmost patch.
	Patches []string
	All     bool
}

// Pop moves applied patches back to the front of unapplied.
func Pop(ctx context.Context, s *stack.Stack, opts PopOptions, out io.Writer) error {
	if err := s.CheckHeadTopMismatch(); err != nil {
		return err
	}

	applied := s.State().Applied
	if len(applied) == 0 {
		return errs.ErrNoAppliedPatches
	}

	var pivot string
	switch {
	case len(opts.Patches) > 0:
		pivot = opts.Patches[0]
		for _, n := range opts.Patches {
			if !s.State().HasPatch(n) {
				return &errs.PatchNotFoundError{Name: n}
			}
			if indexOf(applied, n) < indexOf(applied, pivot) {
				pivot = n
			}
		}
	case opts.All:
		pivot = applied[0]
	default:
		pivot = applied[len(applied)-1]
	}

	t := txn.Transact(s, txn.Options{UseIndexAndWorktree: true, Output: out})
	if _, err := t.PopPatches(func(n string) bool { return n == pivot }); err != nil {
		return err
	}
	_, err := t.Execute(ctx, "pop")
	return err
}

func indexOf(list []string, name string) int {
	for i, n := range list {
		if n == name {
			return i
		}
	}
	return -1
}
