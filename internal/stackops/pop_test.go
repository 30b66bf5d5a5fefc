package stackops_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"patchstack.dev/patchstack/internal/errs"
	"patchstack.dev/patchstack/internal/stackops"
)

func TestPopDefaultPopsSingleTopmost(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t, "p1", "p2")
	var out bytes.Buffer

	require.NoError(t, stackops.Pop(context.Background(), s, stackops.PopOptions{}, &out))
	require.Equal(t, []string{"p1"}, s.State().Applied)
	require.Equal(t, []string{"p2"}, s.State().Unapplied)
}

func TestPopAllPopsEverything(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t, "p1", "p2")
	var out bytes.Buffer

	require.NoError(t, stackops.Pop(context.Background(), s, stackops.PopOptions{All: true}, &out))
	require.Empty(t, s.State().Applied)
	require.Equal(t, []string{"p1", "p2"}, s.State().Unapplied)
}

func TestPopExplicitNamePopsFromLowestMatchUp(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t, "p1", "p2", "p3")
	var out bytes.Buffer

	require.NoError(t, stackops.Pop(context.Background(), s, stackops.PopOptions{Patches: []string{"p2"}}, &out))
	require.Equal(t, []string{"p1"}, s.State().Applied)
	require.Equal(t, []string{"p2", "p3"}, s.State().Unapplied)
}

func TestPopWithNoAppliedPatchesFails(t *testing.T) {
	t.Parallel()
	s, _ := setupStackWithPatches(t)
	var out bytes.Buffer

	err := stackops.Pop(context.Background(), s, stackops.PopOptions{}, &out)
	require.ErrorIs(t, err, errs.ErrNoAppliedPatches)
}
