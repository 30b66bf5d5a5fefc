package stackops

import (
	"context"
	"io"

	"patchstack.dev/patchstack/internal/errs"
	"patchstack.dev/patchstack/internal/stack"
	"patchstack.dev/patchstack/internal/txn"
)

// DeleteOptions names the patches to drop from the stack entirely. A
// deleted applied patch is first popped (its content is discarded, unlike
// commit which keeps it as an ancestor).
type DeleteOptions struct {
	Patches []string
}

// Delete removes patches from the stack, discarding their commits.
func Delete(ctx context.Context, s *stack.Stack, opts DeleteOptions, out io.Writer) error {
	if len(opts.Patches) == 0 {
		return &errs.UsageError{Detail: "delete requires at least one patch"}
	}
	for _, n := range opts.Patches {
		if !s.State().HasPatch(n) {
			return &errs.PatchNotFoundError{Name: n}
		}
	}

	toDelete := make(map[string]bool, len(opts.Patches))
	for _, n := range opts.Patches {
		toDelete[n] = true
	}

	t := txn.Transact(s, txn.Options{UseIndexAndWorktree: true, Output: out})

	// Applied patches above any deletion target must be popped first: the
	// transaction engine has no primitive for removing from the middle of
	// a history chain in place.
	applied := t.Applied()
	lowest := -1
	for i, n := range applied {
		if toDelete[n] && (lowest == -1 || i < lowest) {
			lowest = i
		}
	}
	if lowest != -1 {
		popped, err := t.PopPatches(func(n string) bool { return n == applied[lowest] })
		if err != nil {
			return err
		}
		var rest []string
		for _, n := range popped {
			if !toDelete[n] {
				rest = append(rest, n)
			}
		}
		if err := t.PushPatches(ctx, rest, false); err != nil {
			if t.Conflict() != nil {
				return t.Conflict()
			}
			return err
		}
	}

	t.DeletePatches(func(n string) bool { return toDelete[n] })
	_, err := t.Execute(ctx, "delete")
	return err
}
