package stackops_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"patchstack.dev/patchstack/internal/stackops"
)

func TestPushDefaultTakesSingleTopmostUnapplied(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t, "p1", "p2")
	var out bytes.Buffer
	require.NoError(t, stackops.Pop(context.Background(), s, stackops.PopOptions{All: true}, &out))
	require.Empty(t, s.State().Applied)
	require.Equal(t, []string{"p1", "p2"}, s.State().Unapplied)

	require.NoError(t, stackops.Push(context.Background(), s, stackops.PushOptions{}, &out))
	require.Equal(t, []string{"p1"}, s.State().Applied)
	require.Equal(t, []string{"p2"}, s.State().Unapplied)
}

func TestPushAllAppliesEntireUnappliedSequence(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t, "p1", "p2")
	var out bytes.Buffer
	require.NoError(t, stackops.Pop(context.Background(), s, stackops.PopOptions{All: true}, &out))

	require.NoError(t, stackops.Push(context.Background(), s, stackops.PushOptions{All: true}, &out))
	require.Equal(t, []string{"p1", "p2"}, s.State().Applied)
	require.Empty(t, s.State().Unapplied)
}

func TestPushUnknownPatchFails(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t, "p1")
	var out bytes.Buffer
	err := stackops.Push(context.Background(), s, stackops.PushOptions{Patches: []string{"does-not-exist"}}, &out)
	require.Error(t, err)
}

func TestPushNoUnappliedIsNoOp(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t, "p1")
	var out bytes.Buffer
	require.NoError(t, stackops.Push(context.Background(), s, stackops.PushOptions{}, &out))
	require.Equal(t, []string{"p1"}, s.State().Applied)
}
