package stackops_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"patchstack.dev/patchstack/internal/stack"
	"patchstack.dev/patchstack/internal/stackops"
	"patchstack.dev/patchstack/internal/txn"
	"patchstack.dev/patchstack/internal/vcs"
	"patchstack.dev/patchstack/testhelpers"
)

// setupStackWithPatches initializes a stack on scene's "main" branch and
// pushes each named patch as a real commit, leaving all of them applied.
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
