// Package vcs provides the repository-plumbing layer the stack, transaction,
// refresh and commit engines build on: reference reads and compare-and-swap
// updates, blob/tree/commit object writes, index and worktree status, and
// repository-state detection.
//
// Reads of existing objects and refs go through go-git, in-process. Writes
// and anything CAS-shaped shell out to the git binary, the same hybrid split
// the reference implementation in this codebase's ancestry used: go-git has
// no ref-CAS primitive and no pre-commit hook runner, so those stay on the
// command line.
package vcs
