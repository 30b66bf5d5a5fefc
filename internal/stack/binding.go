package stack

import (
	"context"
	"fmt"

	"patchstack.dev/patchstack/internal/errs"
	"patchstack.dev/patchstack/internal/vcs"
)

const stateFileName = "state.json"

// MetadataRefName returns the well-known metadata reference name for a
// branch's stack, per §6: "refs/stacks/<branch-short-name>".
func MetadataRefName(branch string) string {
	return "refs/stacks/" + branch
}

// Stack binds a State to a branch via its metadata reference.
type Stack struct {
	repo       *vcs.Repository
	branch     string
	ref        string
	state      State
	stateCommit string // commit id the current state was loaded/advanced from
}

// Branch returns the bound branch's short name.
func (s *Stack) Branch() string { return s.branch }

// State returns the currently loaded snapshot.
func (s *Stack) State() State { return s.state }

// StateCommit returns the id of the commit currently backing State().
func (s *Stack) StateCommit() string { return s.stateCommit }

// resolveBranch implements the "explicit name or current HEAD" resolution
// shared by initialize/load (§4.3).
func resolveBranch(repo *vcs.Repository, branch string) (string, error) {
	if branch != "" {
		if !repo.BranchExists(branch) {
			return "", &errs.BranchNotFoundError{Branch: branch}
		}
		return branch, nil
	}
	return repo.CurrentBranch()
}

// Initialize implements §4.3 initialize(repo, branch?): resolves the
// branch, fails StackAlreadyInitializedError if the metadata ref exists,
// otherwise writes an empty state at the branch's current tip.
func Initialize(ctx context.Context, repo *vcs.Repository, branch string) (*Stack, error) {
	b, err := resolveBranch(repo, branch)
	if err != nil {
		return nil, err
	}
	ref := MetadataRefName(b)
	if repo.RefExists(ref) {
		return nil, &errs.StackAlreadyInitializedError{Branch: b}
	}
	tip, err := repo.BranchTip(b)
	if err != nil {
		return nil, err
	}

	s := &Stack{repo: repo, branch: b, ref: ref, state: Empty(tip)}
	commitID, err := writeStateCommit(ctx, repo, s.state, "", "stack init")
	if err != nil {
		return nil, err
	}
	if err := repo.UpdateRefCAS(ctx, ref, commitID, "", "stack init"); err != nil {
		return nil, err
	}
	s.stateCommit = commitID
	return s, nil
}

// Load implements §4.3 load(repo, branch?): as Initialize but requires an
// existing metadata ref.
func Load(ctx context.Context, repo *vcs.Repository, branch string) (*Stack, error) {
	b, err := resolveBranch(repo, branch)
	if err != nil {
		return nil, err
	}
	ref := MetadataRefName(b)
	commitID, err := repo.ResolveRef(ref)
	if err != nil {
		return nil, err
	}
	if commitID == "" {
		return nil, &errs.StackNotInitializedError{Branch: b}
	}

	state, err := readStateCommit(ctx, repo, commitID)
	if err != nil {
		return nil, err
	}
	return &Stack{repo: repo, branch: b, ref: ref, state: state, stateCommit: commitID}, nil
}

// Uninit deletes the metadata reference, destroying the stack per §3's
// lifecycle paragraph. The branch itself and its history are untouched.
func Uninit(ctx context.Context, repo *vcs.Repository, branch string) error {
	b, err := resolveBranch(repo, branch)
	if err != nil {
		return err
	}
	ref := MetadataRefName(b)
	if !repo.RefExists(ref) {
		return &errs.StackNotInitializedError{Branch: b}
	}
	return repo.DeleteRef(ctx, ref)
}

// CheckHeadTopMismatch implements §4.3 check_head_top_mismatch with the
// corrected sense decided in SPEC_FULL.md: fails StackTopHeadMismatch when
// the branch tip and the recorded head *differ* (the excerpt this was
// distilled from had the comparison inverted; that was a bug, not a
// contract).
func (s *Stack) CheckHeadTopMismatch() error {
	tip, err := s.repo.BranchTip(s.branch)
	if err != nil {
		return err
	}
	if tip != s.state.Head {
		return errs.ErrStackTopHeadMismatch
	}
	return nil
}

// CheckIndexClean implements §4.3 check_index_clean.
func (s *Stack) CheckIndexClean(ctx context.Context) error {
	return s.repo.CheckIndexClean(ctx)
}

// CheckWorktreeClean implements §4.3 check_worktree_clean.
func (s *Stack) CheckWorktreeClean(ctx context.Context) error {
	return s.repo.CheckWorktreeClean(ctx)
}

// CheckRepositoryState implements §4.3 check_repository_state(conflicts_okay).
func (s *Stack) CheckRepositoryState(ctx context.Context, conflictsOkay bool) error {
	return s.repo.CheckRepositoryState(ctx, conflictsOkay)
}

// AdvanceState implements §4.3 advance_state(new_head, prev_state_id,
// message, reflog_msg?): writes a new state commit and CAS-updates the
// metadata reference against prevStateID, returning a Transaction error on
// CAS failure.
func (s *Stack) AdvanceState(ctx context.Context, newState State, message, reflogMsg string) error {
	prevStateID := s.stateCommit
	newState.Prev = prevStateID
	commitID, err := writeStateCommit(ctx, s.repo, newState, prevStateID, message)
	if err != nil {
		return err
	}
	if reflogMsg == "" {
		reflogMsg = message
	}
	if err := s.repo.UpdateRefCAS(ctx, s.ref, commitID, prevStateID, reflogMsg); err != nil {
		return err
	}
	s.state = newState
	s.stateCommit = commitID
	return nil
}

// Repo exposes the bound repository for callers (transaction/refresh/commit
// engines) that need direct VCS access.
func (s *Stack) Repo() *vcs.Repository { return s.repo }

func writeStateCommit(ctx context.Context, repo *vcs.Repository, state State, parent, message string) (string, error) {
	doc, err := Encode(state)
	if err != nil {
		return "", err
	}
	blob, err := repo.CreateBlob(ctx, doc)
	if err != nil {
		return "", err
	}
	tree, err := repo.MakeSingleBlobTree(ctx, blob, stateFileName)
	if err != nil {
		return "", err
	}
	commitID, err := repo.CommitTree(ctx, vcs.CommitTreeOptions{
		Tree:    tree,
		Parent:  parent,
		Message: message,
	})
	if err != nil {
		return "", err
	}
	return commitID, nil
}

func readStateCommit(ctx context.Context, repo *vcs.Repository, commitID string) (State, error) {
	tree, err := repo.TreeID(commitID)
	if err != nil {
		return State{}, err
	}
	// The stack-state tree has exactly one blob entry; ls-tree gives us its id.
	blobID, err := lsTreeBlob(ctx, repo, tree, stateFileName)
	if err != nil {
		return State{}, err
	}
	content, err := repo.ReadBlob(ctx, blobID)
	if err != nil {
		return State{}, err
	}
	return Decode(content)
}

func lsTreeBlob(ctx context.Context, repo *vcs.Repository, tree, name string) (string, error) {
	out, err := repo.Runner().Run(ctx, "ls-tree", tree, "--", name)
	if err != nil {
		return "", errs.Wrap("stack", err)
	}
	// format: "<mode> blob <sha>\t<name>"
	var mode, kind, sha string
	n, scanErr := fmt.Sscanf(out, "%s %s %s", &mode, &kind, &sha)
	if scanErr != nil || n != 3 {
		return "", errs.ErrStackMetadataNotFound
	}
	return sha, nil
}
