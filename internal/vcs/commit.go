package vcs

import (
	"context"
	"fmt"

	"patchstack.dev/patchstack/internal/errs"
)

// Signature is a name/email/timestamp triple in the conventional git
// "Name <email> unix tz" commit-object form. Assembling one from user
// identity configuration is an external collaborator's job (§1 Non-goals);
// here it is just a value object passed through to commit-tree.
type Signature struct {
	Name  string
	Email string
	When  string // "<unix-seconds> <±HHMM>"; empty lets git fill in "now"
}

func (s Signature) env(prefix string) []string {
	if s.Name == "" && s.Email == "" {
		return nil
	}
	env := []string{}
	if s.Name != "" {
		env = append(env, prefix+"_NAME="+s.Name)
	}
	if s.Email != "" {
		env = append(env, prefix+"_EMAIL="+s.Email)
	}
	if s.When != "" {
		env = append(env, prefix+"_DATE="+s.When)
	}
	return env
}

// CommitTreeOptions describes a commit object to synthesize.
type CommitTreeOptions struct {
	Tree      string
	Parent    string // "" for a root commit
	Message   string
	Author    Signature
	Committer Signature
}

// CommitTree writes a new commit object with the given tree, single parent
// and message, returning its id. This is how every patch commit in the
// stack — pushed, refreshed, or committed — is actually created; the
// original commit's author/message are carried through verbatim except
// where an operation explicitly asks to change them.
func (r *Repository) CommitTree(ctx context.Context, opts CommitTreeOptions) (string, error) {
	args := []string{"commit-tree", opts.Tree}
	if opts.Parent != "" {
		args = append(args, "-p", opts.Parent)
	}
	args = append(args, "-m", opts.Message)

	env := append(opts.Author.env("GIT_AUTHOR"), opts.Committer.env("GIT_COMMITTER")...)

	var (
		out string
		err error
	)
	if len(env) > 0 {
		out, err = r.run.RunWithEnv(ctx, env, args...)
	} else {
		out, err = r.run.Run(ctx, args...)
	}
	if err != nil {
		return "", errs.Wrap("vcs", err)
	}
	return out, nil
}

// CommitMessage returns a commit's full message (subject + body).
func (r *Repository) CommitMessage(id string) (string, error) {
	c, err := r.CommitObject(id)
	if err != nil {
		return "", err
	}
	return c.Message, nil
}

// CommitAuthor returns the author signature recorded on a commit.
func (r *Repository) CommitAuthor(id string) (Signature, error) {
	c, err := r.CommitObject(id)
	if err != nil {
		return Signature{}, err
	}
	return Signature{
		Name:  c.Author.Name,
		Email: c.Author.Email,
		When:  fmt.Sprintf("%d %s", c.Author.When.Unix(), c.Author.When.Format("-0700")),
	}, nil
}

// CheckoutTree makes the worktree and index match tree, used to land a new
// stack top after push/pop/commit rearrangement.
func (r *Repository) CheckoutTree(ctx context.Context, tree string) error {
	if _, err := r.run.Run(ctx, "read-tree", "-m", "-u", "--reset", tree); err != nil {
		return errs.Wrap("vcs", err)
	}
	return nil
}

// MoveBranch points the current branch's working state at commit without
// touching the stack metadata ref; used after a successful transaction to
// sync HEAD to the new top (§5 ordering: branch ref CAS happens after the
// metadata ref CAS).
func (r *Repository) MoveBranch(ctx context.Context, branch, commitID, reflogMsg string) error {
	old, err := r.ResolveRef("refs/heads/" + branch)
	if err != nil {
		return err
	}
	if err := r.UpdateRefCAS(ctx, "refs/heads/"+branch, commitID, old, reflogMsg); err != nil {
		return err
	}
	return r.CheckoutTree(ctx, mustTree(r, commitID))
}

func mustTree(r *Repository, commitID string) string {
	t, err := r.TreeID(commitID)
	if err != nil {
		return ""
	}
	return t
}
