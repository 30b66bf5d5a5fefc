package commit_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"patchstack.dev/patchstack/internal/commit"
	"patchstack.dev/patchstack/internal/stack"
	"patchstack.dev/patchstack/internal/txn"
	"patchstack.dev/patchstack/internal/vcs"
	"patchstack.dev/patchstack/testhelpers"
)

func setupStackWithPatches(t *testing.T, names ...string) (*stack.Stack, *testhelpers.Scene) {
	t.Helper()
	scene := testhelpers.NewSceneParallel(t, testhelpers.BasicSceneSetup)
	repo, err := vcs.Open(scene.Dir)
	require.NoError(t, err)
	s, err := stack.Initialize(context.Background(), repo, "main")
	require.NoError(t, err)

	ctx := context.Background()
	for _, name := range names {
		require.NoError(t, scene.Repo.CreateChangeAndCommit(name, name))
		commitID, err := repo.BranchTip("main")
		require.NoError(t, err)

		tr := txn.Transact(s, txn.Options{})
		require.NoError(t, tr.NewApplied(ctx, name, commitID))
		_, err = tr.Execute(ctx, "push "+name)
		require.NoError(t, err)
	}
	return s, scene
}

func TestCommitDefaultTakesBottomAppliedPatch(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t, "p1", "p2")

	var out bytes.Buffer
	err := commit.Run(context.Background(), s, commit.Options{}, &out)
	require.NoError(t, err)

	require.Equal(t, []string{"p2"}, s.State().Applied)
	require.False(t, s.State().HasPatch("p1"))
}

func TestCommitAllRemovesEveryAppliedPatch(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t, "p1", "p2")

	var out bytes.Buffer
	err := commit.Run(context.Background(), s, commit.Options{All: true}, &out)
	require.NoError(t, err)

	require.Empty(t, s.State().Applied)
}

func TestUncommitReExtendsStackBase(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t, "p1", "p2")

	var out bytes.Buffer
	require.NoError(t, commit.Run(context.Background(), s, commit.Options{Patches: []string{"p1"}}, &out))
	require.Equal(t, []string{"p2"}, s.State().Applied)

	require.NoError(t, commit.Uncommit(context.Background(), s, commit.UncommitOptions{Number: 1}, &out))
	require.Len(t, s.State().Applied, 2)
	require.Equal(t, "p2", s.State().Applied[1])
}
