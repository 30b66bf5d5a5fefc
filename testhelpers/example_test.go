package testhelpers_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"patchstack.dev/patchstack/testhelpers"
)

func TestExampleUsage(t *testing.T) {
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

	branches, err := scene.Repo.RunGitCommandAndGetOutput("branch", "--list")
	require.NoError(t, err)
	require.Contains(t, branches, "main")
}

func TestGitRepoBasicOperations(t *testing.T) {
	scene := testhelpers.NewScene(t, nil)

	err := scene.Repo.CreateChangeAndCommit("test content", "test")
	require.NoError(t, err)

	branch, err := scene.Repo.CurrentBranchName()
	require.NoError(t, err)
	require.Equal(t, "main", branch)

	messages, err := scene.Repo.ListCurrentBranchCommitMessages()
	require.NoError(t, err)
	require.Greater(t, len(messages), 0)
}

func TestSceneWithSetup(t *testing.T) {
	customSetup := func(scene *testhelpers.Scene) error {
		if err := scene.Repo.CreateChangeAndCommit("commit 1", "1"); err != nil {
			return err
		}
		return scene.Repo.CreateChangeAndCommit("commit 2", "2")
	}

	scene := testhelpers.NewScene(t, customSetup)

	messages, err := scene.Repo.ListCurrentBranchCommitMessages()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(messages), 2)
}

func TestExpectBranches(t *testing.T) {
	scene := testhelpers.NewScene(t, nil)

	err := scene.Repo.CreateChangeAndCommit("initial", "init")
	require.NoError(t, err)

	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("bugfix"))
	require.NoError(t, scene.Repo.CheckoutBranch("main"))

	testhelpers.ExpectBranches(t, scene.Repo, []string{"bugfix", "feature", "main"})
}
