// Package testhelpers provides testing utilities for the patch-stack CLI,
// including a scene system, Git repository helpers, and custom assertions.
package testhelpers

import (
	"os/exec"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectBranches asserts that the repository has exactly the expected
// branches (sorted).
func ExpectBranches(t *testing.T, repo *GitRepo, expected []string) {
	t.Helper()

	cmd := exec.Command("git", "-C", repo.Dir,
		"for-each-ref", "refs/heads/", "--format=%(refname:short)")
	output, err := cmd.Output()
	require.NoError(t, err, "failed to list branches")

	filtered := nonEmptyLines(string(output))
	sort.Strings(filtered)
	sort.Strings(expected)

	require.Equal(t, expected, filtered, "branches do not match")
}

// ExpectCommits asserts that the given branch's commit subjects start with
// expected, top to bottom.
func ExpectCommits(t *testing.T, repo *GitRepo, branch string, expected []string) {
	t.Helper()

	cmd := exec.Command("git", "-C", repo.Dir, "log", "--format=%s", branch)
	output, err := cmd.Output()
	require.NoError(t, err, "failed to list commits")

	filtered := nonEmptyLines(string(output))
	if len(filtered) < len(expected) {
		require.Fail(t, "not enough commits", "expected %d commits, got %d", len(expected), len(filtered))
		return
	}

	require.Equal(t, expected, filtered[:len(expected)], "commits do not match")
}

// ExpectAppliedPatches asserts a stack's applied sequence, bottom to top.
func ExpectAppliedPatches(t *testing.T, applied []string, expected []string) {
	t.Helper()
	require.Equal(t, expected, applied, "applied patches do not match")
}

func nonEmptyLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
