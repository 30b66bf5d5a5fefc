// Package stackops gives the transaction engine's push/pop/rename/delete
// primitives (§4.4) a direct, user-facing counterpart, and a read-only
// listing operation, so they are reachable and testable from the CLI
// without going through commit or refresh.
package stackops

import (
	"context"
	"io"

	"patchstack.dev/patchstack/internal/errs"
	"patchstack.dev/patchstack/internal/stack"
	"patchstack.dev/patchstack/internal/txn"
)

// PushOptions controls which unapplied patches to push and in what order.
type PushOptions struct {
	// Patches names the patches to push, bottom to top. Empty means push
	// the single topmost unapplied patch.
	Patches []string
	All     bool
}

// Push applies unapplied patches onto the top of the stack.
func Push(ctx context.Context, s *stack.Stack, opts PushOptions, out io.Writer) error {
	names, err := resolvePushList(s, opts)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}

	if err := s.CheckHeadTopMismatch(); err != nil {
		return err
	}

	t := txn.Transact(s, txn.Options{UseIndexAndWorktree: true, Output: out})
	if err := t.PushPatches(ctx, names, false); err != nil {
		if conflict := t.Conflict(); conflict != nil {
			// Per §4.4: a conflict under a configuration that doesn't
			// tolerate it (push doesn't set AllowConflictsIfSameTop) means
			// the transaction is abandoned rather than executed, so no
			// ref changes and the conflict itself (not a rolled-back
			// TransactionError) reaches the caller.
			return conflict
		}
		return err
	}
	_, err = t.Execute(ctx, "push")
	return err
}

func resolvePushList(s *stack.Stack, opts PushOptions) ([]string, error) {
	unapplied := s.State().Unapplied
	switch {
	case len(opts.Patches) > 0:
		for _, n := range opts.Patches {
			found := false
			for _, u := range unapplied {
				if u == n {
					found = true
					break
				}
			}
			if !found {
				return nil, &errs.PatchNotFoundError{Name: n}
			}
		}
		return append([]string(nil), opts.Patches...), nil
	case opts.All:
		return append([]string(nil), unapplied...), nil
	default:
		if len(unapplied) == 0 {
			return nil, nil
		}
		return unapplied[:1], nil
	}
}
