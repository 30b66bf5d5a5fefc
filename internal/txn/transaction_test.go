package txn_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"patchstack.dev/patchstack/internal/stack"
	"patchstack.dev/patchstack/internal/txn"
	"patchstack.dev/patchstack/internal/vcs"
	"patchstack.dev/patchstack/testhelpers"
)

func setupStack(t *testing.T) (*stack.Stack, *testhelpers.Scene) {
	t.Helper()
	scene := testhelpers.NewSceneParallel(t, testhelpers.BasicSceneSetup)
	repo, err := vcs.Open(scene.Dir)
	require.NoError(t, err)
	s, err := stack.Initialize(context.Background(), repo, "main")
	require.NoError(t, err)
	return s, scene
}

func TestNewAppliedThenExecuteMovesBranchAndHead(t *testing.T) {
	t.Parallel()
	s, scene := setupStack(t)
	ctx := context.Background()

	require.NoError(t, scene.Repo.CreateChangeAndCommit("patch one", "p1"))
	commitID, err := s.Repo().BranchTip("main")
	require.NoError(t, err)

	tr := txn.Transact(s, txn.Options{})
	require.NoError(t, tr.NewApplied(ctx, "p1", commitID))

	newStack, err := tr.Execute(ctx, "push p1")
	require.NoError(t, err)
	require.Equal(t, []string{"p1"}, newStack.State().Applied)
	require.Equal(t, commitID, newStack.State().Head)

	tip, err := s.Repo().BranchTip("main")
	require.NoError(t, err)
	require.Equal(t, commitID, tip)
}

func TestExecuteIsNoOpWhenNothingStaged(t *testing.T) {
	t.Parallel()
	s, _ := setupStack(t)
	ctx := context.Background()

	tr := txn.Transact(s, txn.Options{})
	returned, err := tr.Execute(ctx, "noop")
	require.NoError(t, err)
	require.Equal(t, s, returned)
}

func TestPopPatchesMovesTopmostMatchToUnapplied(t *testing.T) {
	t.Parallel()
	s, scene := setupStack(t)
	ctx := context.Background()

	require.NoError(t, scene.Repo.CreateChangeAndCommit("patch one", "p1"))
	c1, err := s.Repo().BranchTip("main")
	require.NoError(t, err)

	tr := txn.Transact(s, txn.Options{})
	require.NoError(t, tr.NewApplied(ctx, "p1", c1))
	s2, err := tr.Execute(ctx, "push p1")
	require.NoError(t, err)

	tr2 := txn.Transact(s2, txn.Options{})
	popped, err := tr2.PopPatches(func(n string) bool { return n == "p1" })
	require.NoError(t, err)
	require.Equal(t, []string{"p1"}, popped)
	require.Empty(t, tr2.Applied())
	require.Equal(t, []string{"p1"}, tr2.Unapplied())
}

func TestRenamePatchRenamesWithoutTouchingCommit(t *testing.T) {
	t.Parallel()
	s, scene := setupStack(t)
	ctx := context.Background()

	require.NoError(t, scene.Repo.CreateChangeAndCommit("patch one", "p1"))
	c1, err := s.Repo().BranchTip("main")
	require.NoError(t, err)

	tr := txn.Transact(s, txn.Options{})
	require.NoError(t, tr.NewApplied(ctx, "p1", c1))
	s2, err := tr.Execute(ctx, "push p1")
	require.NoError(t, err)

	tr2 := txn.Transact(s2, txn.Options{})
	require.NoError(t, tr2.RenamePatch("p1", "p1-renamed"))
	s3, err := tr2.Execute(ctx, "rename")
	require.NoError(t, err)
	require.Equal(t, []string{"p1-renamed"}, s3.State().Applied)
	require.Equal(t, c1, s3.State().Patches["p1-renamed"])
}
