package vcs

import (
	"context"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"patchstack.dev/patchstack/internal/errs"
)

// Repository binds a go-git repository (used for read access to objects and
// refs) with a CommandRunner rooted at the same working tree (used for
// writes, CAS, index and worktree mutation).
type Repository struct {
	repo *gogit.Repository
	run  *CommandRunner
	root string
}

// Open opens the repository containing dir, walking up to find .git.
func Open(dir string) (*Repository, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, errs.Wrap("vcs", err)
	}
	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errs.Wrap("vcs", err)
	}
	wt, err := repo.Worktree()
	root := absPath
	if err == nil {
		root = wt.Filesystem.Root()
	}
	return &Repository{repo: repo, run: NewCommandRunner(root), root: root}, nil
}

// Root returns the repository's working-tree root.
func (r *Repository) Root() string { return r.root }

// Runner exposes the underlying command runner for callers that need raw
// git subcommands (status, diff, hooks, index manipulation).
func (r *Repository) Runner() *CommandRunner { return r.run }

// CurrentBranch returns the short name of the branch HEAD points at, or
// fails with ErrHeadDetached / HeadNotBranchError.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		if err == plumbing.ErrReferenceNotFound {
			return "", errs.ErrHeadDetached
		}
		return "", errs.Wrap("vcs", err)
	}
	if head.Name() == plumbing.HEAD {
		return "", errs.ErrHeadDetached
	}
	if !head.Name().IsBranch() {
		return "", &errs.HeadNotBranchError{Ref: head.Name().String()}
	}
	return head.Name().Short(), nil
}

// BranchTip resolves the branch's current commit id.
func (r *Repository) BranchTip(branch string) (string, error) {
	ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		if err == plumbing.ErrReferenceNotFound {
			return "", &errs.BranchNotFoundError{Branch: branch}
		}
		return "", errs.Wrap("vcs", err)
	}
	return ref.Hash().String(), nil
}

// BranchExists reports whether branch has a local ref.
func (r *Repository) BranchExists(branch string) bool {
	_, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	return err == nil
}

// ResolveRef returns the object id a ref currently points at, or "" with no
// error if the ref does not exist.
func (r *Repository) ResolveRef(name string) (string, error) {
	ref, err := r.repo.Reference(plumbing.ReferenceName(name), true)
	if err != nil {
		if err == plumbing.ErrReferenceNotFound {
			return "", nil
		}
		return "", errs.Wrap("vcs", err)
	}
	return ref.Hash().String(), nil
}

// UpdateRefCAS advances ref to newValue iff its current value equals
// oldValue (oldValue == "" means "ref must not currently exist"). It shells
// out to `git update-ref` which performs the comparison atomically using the
// reflog lock, giving genuine compare-and-swap semantics that go-git's plain
// SetReference does not provide.
func (r *Repository) UpdateRefCAS(ctx context.Context, ref, newValue, oldValue, reflogMsg string) error {
	args := []string{"update-ref"}
	if reflogMsg != "" {
		args = append(args, "-m", reflogMsg)
	}
	args = append(args, ref, newValue)
	if oldValue != "" {
		args = append(args, oldValue)
	} else {
		args = append(args, plumbing.ZeroHash.String())
	}
	_, err := r.run.Run(ctx, args...)
	if err != nil {
		return &errs.TransactionError{Reason: fmt.Sprintf("ref update for %s failed (expected old value %s): %v", ref, oldValue, err)}
	}
	return nil
}

// DeleteRef removes ref entirely (used by uninit).
func (r *Repository) DeleteRef(ctx context.Context, ref string) error {
	_, err := r.run.Run(ctx, "update-ref", "-d", ref)
	if err != nil {
		return errs.Wrap("vcs", err)
	}
	return nil
}

// RefExists reports whether name resolves to an object.
func (r *Repository) RefExists(name string) bool {
	v, err := r.ResolveRef(name)
	return err == nil && v != ""
}

// CreateBlob writes content as a loose blob object and returns its id.
func (r *Repository) CreateBlob(ctx context.Context, content string) (string, error) {
	return r.run.RunWithInput(ctx, content, "hash-object", "-w", "--stdin")
}

// ReadBlob returns the content of the blob with the given id.
func (r *Repository) ReadBlob(ctx context.Context, id string) (string, error) {
	out, err := r.run.RunRaw(ctx, "cat-file", "-p", id)
	if err != nil {
		return "", errs.Wrap("vcs", err)
	}
	return out, nil
}

// CommitObject returns the parsed commit for id.
func (r *Repository) CommitObject(id string) (*object.Commit, error) {
	h := plumbing.NewHash(id)
	c, err := r.repo.CommitObject(h)
	if err != nil {
		return nil, errs.Wrap("vcs", err)
	}
	return c, nil
}

// FirstParent returns the first-parent commit id of id, or "" if id is a
// root commit.
func (r *Repository) FirstParent(id string) (string, error) {
	c, err := r.CommitObject(id)
	if err != nil {
		return "", err
	}
	if c.NumParents() == 0 {
		return "", nil
	}
	return c.ParentHashes[0].String(), nil
}

// TreeID returns the tree object id a commit records.
func (r *Repository) TreeID(commitID string) (string, error) {
	c, err := r.CommitObject(commitID)
	if err != nil {
		return "", err
	}
	return c.TreeHash.String(), nil
}

// ObjectExists reports whether an object id is present in the store.
func (r *Repository) ObjectExists(ctx context.Context, id string) bool {
	_, err := r.run.Run(ctx, "cat-file", "-e", id)
	return err == nil
}
