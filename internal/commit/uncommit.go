package commit

import (
	"context"
	"io"
	"strings"

	"patchstack.dev/patchstack/internal/errs"
	"patchstack.dev/patchstack/internal/patchname"
	"patchstack.dev/patchstack/internal/stack"
	"patchstack.dev/patchstack/internal/txn"
)

// UncommitOptions mirrors the structural inverse of Options: either an
// explicit count of commits to pull back into the stack, or an explicit
// ancestor commit-id to stop at.
type UncommitOptions struct {
	Number int
	To     string // commit-id; mutually exclusive with Number
}

// Uncommit is the structural inverse of Run: it extends applied at the
// front with commits walked back from the current stack base along first
// parents, synthesizing patch names from each commit's subject line (the
// names themselves were discarded when those commits were committed into
// base history), and moves the stack base down. Grounded in Testable
// Property 4 ("Commit+Uncommit round-trip"), which names this operation's
// contract without spec.md ever defining it.
func Uncommit(ctx context.Context, s *stack.Stack, opts UncommitOptions, out io.Writer) error {
	base, err := currentBase(s)
	if err != nil {
		return err
	}

	var chain []string // bottom-most-first commit ids to pull in
	switch {
	case opts.To != "":
		cursor := base
		for cursor != opts.To {
			if cursor == "" {
				return &errs.PatchNotFoundError{Name: opts.To}
			}
			chain = append([]string{cursor}, chain...)
			cursor, err = s.Repo().FirstParent(cursor)
			if err != nil {
				return err
			}
		}
	case opts.Number > 0:
		cursor := base
		ids := make([]string, 0, opts.Number)
		for i := 0; i < opts.Number; i++ {
			if cursor == "" {
				break
			}
			ids = append(ids, cursor)
			cursor, err = s.Repo().FirstParent(cursor)
			if err != nil {
				return err
			}
		}
		for i := len(ids) - 1; i >= 0; i-- {
			chain = append(chain, ids[i])
		}
	default:
		return &errs.TransactionError{Reason: "uncommit requires --number or --to"}
	}

	if len(chain) == 0 {
		return nil
	}

	existing := s.State().AllPatches()
	t := txn.Transact(s, txn.Options{UseIndexAndWorktree: true, Output: out})
	// Each insertion lands below everything staged so far, so walk chain
	// top-most first to leave it bottom-most-first in applied.
	for i := len(chain) - 1; i >= 0; i-- {
		commitID := chain[i]
		msg, err := s.Repo().CommitMessage(commitID)
		if err != nil {
			return err
		}
		desired := patchname.Make(subjectLine(msg), true, patchname.MaxLen)
		name := patchname.Uniquify(desired, nil, append(existing, chain...))
		existing = append(existing, name)
		if err := newBottomPatch(ctx, t, name, commitID); err != nil {
			return err
		}
	}

	_, err = t.Execute(ctx, "uncommit")
	return err
}

// newBottomPatch inserts name/commitID as the new bottommost applied patch,
// below everything currently staged. The transaction engine's primitives
// are all top-anchored (new_applied requires the new commit's parent to
// equal the current top), so achieving a bottom insertion means staging it
// first, before any of the patches already in the transaction.
func newBottomPatch(ctx context.Context, t *txn.Transaction, name, commitID string) error {
	rest := t.Applied()
	if _, err := t.PopPatches(func(string) bool { return true }); err != nil && len(rest) > 0 {
		return err
	}
	if err := t.NewApplied(ctx, name, commitID); err != nil {
		return err
	}
	return t.PushPatches(ctx, rest, false)
}

func currentBase(s *stack.Stack) (string, error) {
	if top := s.State().Top(); top != "" {
		commitID, err := s.State().CommitOf(s.State().Applied[0])
		if err != nil {
			return "", err
		}
		return s.Repo().FirstParent(commitID)
	}
	return s.State().Head, nil
}

func subjectLine(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return message[:i]
	}
	return message
}
