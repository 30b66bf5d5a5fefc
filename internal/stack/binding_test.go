package stack_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"patchstack.dev/patchstack/internal/stack"
	"patchstack.dev/patchstack/internal/vcs"
	"patchstack.dev/patchstack/testhelpers"
)

func openRepo(t *testing.T, dir string) *vcs.Repository {
	t.Helper()
	repo, err := vcs.Open(dir)
	require.NoError(t, err)
	return repo
}

func TestInitializeCreatesEmptyStateAtBranchTip(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.BasicSceneSetup)
	ctx := context.Background()
	repo := openRepo(t, scene.Dir)

	s, err := stack.Initialize(ctx, repo, "main")
	require.NoError(t, err)

	tip, err := repo.BranchTip("main")
	require.NoError(t, err)
	require.Equal(t, tip, s.State().Head)
	require.Empty(t, s.State().Applied)
}

func TestInitializeTwiceFails(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.BasicSceneSetup)
	ctx := context.Background()
	repo := openRepo(t, scene.Dir)

	_, err := stack.Initialize(ctx, repo, "main")
	require.NoError(t, err)

	_, err = stack.Initialize(ctx, repo, "main")
	require.Error(t, err)
}

func TestLoadFailsWhenNotInitialized(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.BasicSceneSetup)
	ctx := context.Background()
	repo := openRepo(t, scene.Dir)

	_, err := stack.Load(ctx, repo, "main")
	require.Error(t, err)
}

func TestLoadRoundTripsAfterInitialize(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.BasicSceneSetup)
	ctx := context.Background()
	repo := openRepo(t, scene.Dir)

	created, err := stack.Initialize(ctx, repo, "main")
	require.NoError(t, err)

	loaded, err := stack.Load(ctx, repo, "main")
	require.NoError(t, err)
	require.Equal(t, created.State().Head, loaded.State().Head)
}

func TestUninitRemovesMetadataRef(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.BasicSceneSetup)
	ctx := context.Background()
	repo := openRepo(t, scene.Dir)

	_, err := stack.Initialize(ctx, repo, "main")
	require.NoError(t, err)

	require.NoError(t, stack.Uninit(ctx, repo, "main"))

	_, err = stack.Load(ctx, repo, "main")
	require.Error(t, err)
}

func TestCheckHeadTopMismatchDetectsDivergence(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.BasicSceneSetup)
	ctx := context.Background()
	repo := openRepo(t, scene.Dir)

	s, err := stack.Initialize(ctx, repo, "main")
	require.NoError(t, err)
	require.NoError(t, s.CheckHeadTopMismatch())

	// Advance the branch tip behind the stack's back.
	require.NoError(t, scene.Repo.CreateChangeAndCommit("drift", "drift"))

	require.Error(t, s.CheckHeadTopMismatch())
}
