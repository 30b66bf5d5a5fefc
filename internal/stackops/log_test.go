package stackops_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"patchstack.dev/patchstack/internal/stackops"
)

func TestLogListsAppliedThenUnapplied(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t, "p1", "p2", "p3")
	var out bytes.Buffer
	require.NoError(t, stackops.Pop(context.Background(), s, stackops.PopOptions{}, &out))

	entries, err := stackops.Log(s, false)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	require.Equal(t, "p1", entries[0].Name)
	require.Equal(t, "applied", entries[0].Status)
	require.Equal(t, "p2", entries[1].Name)
	require.Equal(t, "top", entries[1].Status)
	require.Equal(t, "p3", entries[2].Name)
	require.Equal(t, "unapplied", entries[2].Status)
	require.Equal(t, "p3", entries[2].Subject)
}

func TestLogExcludesHiddenByDefault(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t, "p1", "p2")
	var out bytes.Buffer
	require.NoError(t, stackops.Pop(context.Background(), s, stackops.PopOptions{}, &out))
	hidden := s.State().WithUnapplied(nil).WithHidden([]string{"p2"})
	require.NoError(t, s.AdvanceState(context.Background(), hidden, "hide p2", ""))

	entries, err := stackops.Log(s, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "top", entries[0].Status)

	withHidden, err := stackops.Log(s, true)
	require.NoError(t, err)
	require.Len(t, withHidden, 2)
	require.Equal(t, "hidden", withHidden[1].Status)
}
