package stack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrips(t *testing.T) {
	t.Parallel()

	s := Empty("base")
	s = s.WithPatch("a", "c1").WithApplied([]string{"a"})
	s = s.WithHead("c1", "prevcommit")

	encoded, err := Encode(s)
	require.NoError(t, err)
	require.Contains(t, encoded, `"version": 1`)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, s.Head, decoded.Head)
	require.Equal(t, s.Applied, decoded.Applied)
	require.Equal(t, []string{}, decoded.Unapplied)
	require.Equal(t, []string{}, decoded.Hidden)
	require.Equal(t, s.Patches, decoded.Patches)
	require.Equal(t, "prevcommit", decoded.Prev)
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	t.Parallel()

	doc := `{"version": 2, "head": "x", "applied": [], "unapplied": [], "hidden": [], "patches": {}}`
	_, err := Decode(doc)
	require.Error(t, err)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := Decode("not json")
	require.Error(t, err)
}

func TestEncodeEndsWithNewline(t *testing.T) {
	t.Parallel()

	encoded, err := Encode(Empty("base"))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(encoded, "\n"))
}
