package stackops_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"patchstack.dev/patchstack/internal/stackops"
)

func TestDeleteUnappliedPatchRemovesIt(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t, "p1", "p2")
	var out bytes.Buffer
	require.NoError(t, stackops.Pop(context.Background(), s, stackops.PopOptions{All: true}, &out))

	require.NoError(t, stackops.Delete(context.Background(), s, stackops.DeleteOptions{Patches: []string{"p1"}}, &out))
	require.False(t, s.State().HasPatch("p1"))
	require.Equal(t, []string{"p2"}, s.State().Unapplied)
}

func TestDeleteAppliedPatchRepushesTheRest(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t, "p1", "p2", "p3")
	var out bytes.Buffer

	require.NoError(t, stackops.Delete(context.Background(), s, stackops.DeleteOptions{Patches: []string{"p2"}}, &out))
	require.False(t, s.State().HasPatch("p2"))
	require.Equal(t, []string{"p1", "p3"}, s.State().Applied)
}

func TestDeleteWithNoPatchesFails(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t, "p1")
	var out bytes.Buffer
	err := stackops.Delete(context.Background(), s, stackops.DeleteOptions{}, &out)
	require.Error(t, err)
}

func TestDeleteUnknownPatchFails(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t, "p1")
	var out bytes.Buffer
	err := stackops.Delete(context.Background(), s, stackops.DeleteOptions{Patches: []string{"does-not-exist"}}, &out)
	require.Error(t, err)
}
