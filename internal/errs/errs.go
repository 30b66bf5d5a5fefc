// Package errs defines the sentinel errors and error types that propagate
// out of the stack, transaction, refresh and commit layers.
//
// Callers use errors.Is/errors.As to branch on these; every exported error
// type implements Error() and, where it maps onto one of the sentinels
// below, Is() so that errors.Is(err, ErrXxx) works through wrapping.
package errs

import (
	"errors"
	"fmt"
)

// Structural
var (
	ErrHeadDetached = errors.New("not on branch, HEAD is detached")
)

// HeadNotBranchError reports that HEAD points at a ref that is not a branch.
type HeadNotBranchError struct{ Ref string }

func (e *HeadNotBranchError) Error() string {
	return fmt.Sprintf("not on branch, HEAD points at %q", e.Ref)
}

// BranchNotFoundError reports a missing branch.
type BranchNotFoundError struct{ Branch string }

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %q not found", e.Branch)
}

// InvalidBranchNameError reports a syntactically invalid branch name.
type InvalidBranchNameError struct{ Name string }

func (e *InvalidBranchNameError) Error() string {
	return fmt.Sprintf("invalid branch name %q", e.Name)
}

// NonUTF8BranchNameError reports a branch name that is not valid UTF-8.
type NonUTF8BranchNameError struct{ Name string }

func (e *NonUTF8BranchNameError) Error() string {
	return fmt.Sprintf("non-UTF-8 branch name %q", e.Name)
}

// Stack lifecycle

// StackNotInitializedError reports that a branch has no stack metadata.
type StackNotInitializedError struct{ Branch string }

func (e *StackNotInitializedError) Error() string {
	return fmt.Sprintf("branch %q not initialized", e.Branch)
}

// StackAlreadyInitializedError reports that a branch already has stack metadata.
type StackAlreadyInitializedError struct{ Branch string }

func (e *StackAlreadyInitializedError) Error() string {
	return fmt.Sprintf("branch %q already initialized", e.Branch)
}

var ErrStackMetadataNotFound = errors.New("stack metadata not found")

// StackUnknownVersionError reports a stack-state document with an
// unrecognized schema version.
type StackUnknownVersionError struct{ Version int }

func (e *StackUnknownVersionError) Error() string {
	return fmt.Sprintf("stack metadata has unrecognized schema version %d", e.Version)
}

// Consistency

var (
	ErrStackTopHeadMismatch = errors.New("HEAD and stack top are not the same; the branch was modified outside the stack")
	ErrOutstandingConflicts = errors.New("resolve outstanding conflicts first")
	ErrDirtyIndex           = errors.New("the index is dirty; consider using --index or --force")
	ErrDirtyWorktree        = errors.New("the worktree is dirty; consider using --force")
)

// ActiveRepositoryStateError reports that the repository is mid-operation
// (merge, rebase, cherry-pick, bisect, revert, mailbox-apply) in a mode that
// is not acceptable for the requested command.
type ActiveRepositoryStateError struct{ Mode string }

func (e *ActiveRepositoryStateError) Error() string {
	return fmt.Sprintf("repository is in the middle of a %s; skip, abort, or resolve it first", e.Mode)
}

// Patch

// InvalidPatchNameError reports a patch name that fails the naming grammar.
type InvalidPatchNameError struct{ Name string }

func (e *InvalidPatchNameError) Error() string {
	return fmt.Sprintf("invalid patch name %q", e.Name)
}

// PatchNameExistsError reports a rename/push collision.
type PatchNameExistsError struct{ Name string }

func (e *PatchNameExistsError) Error() string {
	return fmt.Sprintf("patch %q already exists", e.Name)
}

var ErrNoAppliedPatches = errors.New("no applied patches")

// PatchNotFoundError reports a reference to an unknown patch name.
type PatchNotFoundError struct{ Name string }

func (e *PatchNotFoundError) Error() string {
	return fmt.Sprintf("patch %q not found", e.Name)
}

// EmptyPatchesError reports the commit guard rejecting empty patches.
type EmptyPatchesError struct{ Names []string }

func (e *EmptyPatchesError) Error() string {
	return fmt.Sprintf("refusing to commit empty patch(es): %v (use --allow-empty to override)", e.Names)
}

// UsageError reports invalid or mutually-exclusive command-line arguments,
// detected before any repository state is touched. Distinguished from the
// other error types so the CLI entry point can map it to exit code 2 per
// §6 ("0 success; 1 generic failure; 2 bad usage").
type UsageError struct{ Detail string }

func (e *UsageError) Error() string { return e.Detail }

// Content

// NonUTF8FileError reports a file containing non-UTF-8 data where text was
// expected.
type NonUTF8FileError struct{ Path string }

func (e *NonUTF8FileError) Error() string {
	return fmt.Sprintf("file %q contains non-UTF-8 data", e.Path)
}

var ErrNonUTF8PatchDescription = errors.New("patch description contains non-UTF-8 data")

// ParsePatchDescriptionError reports a malformed commit message when
// splitting it into subject/body/trailers.
type ParsePatchDescriptionError struct{ Detail string }

func (e *ParsePatchDescriptionError) Error() string {
	return fmt.Sprintf("failed to parse patch description: %s", e.Detail)
}

// Transaction

// TransactionError is the catch-all returned when a transaction's
// compare-and-swap fails, or a merge yields conflicts under a configuration
// that does not tolerate them. Its contract: no user-visible reference
// changed.
type TransactionError struct{ Reason string }

func (e *TransactionError) Error() string {
	if e.Reason == "" {
		return "command aborted (all changes rolled back)"
	}
	return fmt.Sprintf("command aborted (all changes rolled back): %s", e.Reason)
}

// MergeConflictError is not a failure of the transaction layer: it is
// returned as informational status from push/refresh operations that leave
// conflict markers in the index/worktree without aborting the transaction.
type MergeConflictError struct {
	Patch string
	Files []string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("%d conflict(s) applying patch %q: %v", len(e.Files), e.Patch, e.Files)
}

// Subprocess

// EditorFailError reports a nonzero exit or spawn failure from the
// configured editor.
type EditorFailError struct {
	Editor string
	Detail string
}

func (e *EditorFailError) Error() string {
	return fmt.Sprintf("problem with the editor %q: %s", e.Editor, e.Detail)
}

// HookError reports a nonzero exit from a named repository hook.
type HookError struct {
	Hook   string
	Detail string
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%q hook: %s", e.Hook, e.Detail)
}

// GitError wraps a failure from the underlying VCS with the command that
// produced it, so the cause is visible without leaking raw stderr formatting
// up through every layer.
type GitError struct {
	Op     string
	Stderr string
	Err    error
}

func (e *GitError) Error() string {
	msg := fmt.Sprintf("git: %s", e.Op)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GitError) Unwrap() error { return e.Err }

// Wrap prefixes err with the responsible subsystem name, per the
// propagation policy: errors surface to the command entry point unchanged
// except for this wrapping.
func Wrap(subsystem string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", subsystem, err)
}
