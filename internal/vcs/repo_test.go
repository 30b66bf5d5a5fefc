package vcs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"patchstack.dev/patchstack/internal/vcs"
	"patchstack.dev/patchstack/testhelpers"
)

func TestOpenAndCurrentBranch(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.BasicSceneSetup)

	repo, err := vcs.Open(scene.Dir)
	require.NoError(t, err)

	branch, err := repo.CurrentBranch()
	require.NoError(t, err)
	require.Equal(t, "main", branch)
}

func TestBranchTipAndResolveRef(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.BasicSceneSetup)

	repo, err := vcs.Open(scene.Dir)
	require.NoError(t, err)

	tip, err := repo.BranchTip("main")
	require.NoError(t, err)
	require.NotEmpty(t, tip)

	resolved, err := repo.ResolveRef("refs/heads/main")
	require.NoError(t, err)
	require.Equal(t, tip, resolved)

	missing, err := repo.ResolveRef("refs/heads/does-not-exist")
	require.NoError(t, err)
	require.Empty(t, missing)
}

func TestUpdateRefCASRequiresMatchingOldValue(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.BasicSceneSetup)
	ctx := context.Background()

	repo, err := vcs.Open(scene.Dir)
	require.NoError(t, err)

	tip, err := repo.BranchTip("main")
	require.NoError(t, err)

	err = repo.UpdateRefCAS(ctx, "refs/stacks/main", tip, "", "init")
	require.NoError(t, err)

	// Stale CAS must fail: the ref already exists, "" means "must not exist".
	err = repo.UpdateRefCAS(ctx, "refs/stacks/main", tip, "", "init-again")
	require.Error(t, err)
}

func TestCreateBlobAndReadBlobRoundTrip(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.BasicSceneSetup)
	ctx := context.Background()

	repo, err := vcs.Open(scene.Dir)
	require.NoError(t, err)

	id, err := repo.CreateBlob(ctx, "hello world")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	content, err := repo.ReadBlob(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "hello world", content)
}
