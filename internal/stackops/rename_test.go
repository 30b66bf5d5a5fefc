package stackops_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"patchstack.dev/patchstack/internal/stackops"
)

func TestRenameUpdatesNameWithoutTouchingCommit(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t, "p1")
	oldCommit, err := s.State().CommitOf("p1")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, stackops.Rename(context.Background(), s, "p1", "p1-renamed", &out))

	require.Equal(t, []string{"p1-renamed"}, s.State().Applied)
	newCommit, err := s.State().CommitOf("p1-renamed")
	require.NoError(t, err)
	require.Equal(t, oldCommit, newCommit)
	require.False(t, s.State().HasPatch("p1"))
}

func TestRenameToExistingNameFails(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t, "p1", "p2")

	var out bytes.Buffer
	err := stackops.Rename(context.Background(), s, "p1", "p2", &out)
	require.Error(t, err)
}
