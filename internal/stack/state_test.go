package stack

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmptyStateHasNoTop(t *testing.T) {
	t.Parallel()

	s := Empty("deadbeef")
	require.Equal(t, "", s.Top())
	require.Equal(t, "", s.TopCommit())
	require.Empty(t, s.AllPatches())
	require.NoError(t, s.Validate())
}

func TestWithPatchAndWithAppliedBuildsTop(t *testing.T) {
	t.Parallel()

	s := Empty("base")
	s = s.WithPatch("p1", "c1")
	s = s.WithApplied([]string{"p1"})

	require.Equal(t, "p1", s.Top())
	require.Equal(t, "c1", s.TopCommit())
	require.NoError(t, s.Validate())
}

func TestRenamePatchUpdatesAllSequencesAndMap(t *testing.T) {
	t.Parallel()

	s := Empty("base")
	s = s.WithPatch("old", "c1").WithApplied([]string{"old"})

	renamed, err := s.RenamePatch("old", "new")
	require.NoError(t, err)
	require.Equal(t, []string{"new"}, renamed.Applied)
	require.Equal(t, "c1", renamed.Patches["new"])
	require.NotContains(t, renamed.Patches, "old")
}

func TestRenamePatchFailsOnCollision(t *testing.T) {
	t.Parallel()

	s := Empty("base")
	s = s.WithPatch("a", "c1").WithPatch("b", "c2").WithApplied([]string{"a", "b"})

	_, err := s.RenamePatch("a", "b")
	require.Error(t, err)
}

func TestValidateRejectsPatchInTwoSequences(t *testing.T) {
	t.Parallel()

	s := Empty("base")
	s = s.WithPatch("p", "c1")
	s.Applied = []string{"p"}
	s.Unapplied = []string{"p"}

	require.Error(t, s.Validate())
}

func TestCommitOfFailsForUnknownPatch(t *testing.T) {
	t.Parallel()

	s := Empty("base")
	_, err := s.CommitOf("nope")
	require.Error(t, err)
}

func TestAllPatchesOrdersAppliedThenUnappliedThenHidden(t *testing.T) {
	t.Parallel()

	s := Empty("base")
	s = s.WithPatch("a", "1").WithPatch("b", "2").WithPatch("c", "3")
	s = s.WithApplied([]string{"a"}).WithUnapplied([]string{"b"}).WithHidden([]string{"c"})

	require.Equal(t, []string{"a", "b", "c"}, s.AllPatches())
}
