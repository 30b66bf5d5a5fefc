package patchname

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseValidNames(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"fix-bug", "feature/widget", "a", "v1.2.3", "a_b-c"} {
		got, err := Parse(name)
		require.NoError(t, err, name)
		require.Equal(t, name, got)
	}
}

func TestParseRejectsInvalidNames(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", ".", "..", "base", "HEAD", ".hidden", "a//b", "a..b", "a/", "has space", "tab\tin"} {
		_, err := Parse(name)
		require.Error(t, err, name)
	}
}

func TestMakeSanitizesAndCollapses(t *testing.T) {
	t.Parallel()

	require.Equal(t, "fix-the-thing", Make("Fix the   Thing", false, 0))
	require.Equal(t, "add-widget.v2", Make("Add Widget.v2", true, 0))
	require.Equal(t, "patch", Make("!!!", false, 0))
}

func TestMakeTruncatesToLenLimit(t *testing.T) {
	t.Parallel()

	got := Make("a-very-long-patch-name-that-should-be-truncated-somewhere", false, 10)
	require.LessOrEqual(t, len(got), 10)
}

func TestUniquifyAppendsSuffixOnCollision(t *testing.T) {
	t.Parallel()

	require.Equal(t, "fix-bug", Uniquify("fix-bug", nil, []string{"other"}))
	require.Equal(t, "fix-bug-1", Uniquify("fix-bug", nil, []string{"fix-bug"}))
	require.Equal(t, "fix-bug-2", Uniquify("fix-bug", nil, []string{"fix-bug", "fix-bug-1"}))
}

func TestUniquifyAllowsSelfCollision(t *testing.T) {
	t.Parallel()

	require.Equal(t, "fix-bug", Uniquify("fix-bug", []string{"fix-bug"}, []string{"fix-bug"}))
}
