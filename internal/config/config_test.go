package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"patchstack.dev/patchstack/testhelpers"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, nil)

	cfg, err := Load(scene.Dir)
	require.NoError(t, err)
	require.False(t, cfg.RefreshSubmodules)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, nil)

	require.NoError(t, Save(scene.Dir, Config{RefreshSubmodules: true}))

	cfg, err := Load(scene.Dir)
	require.NoError(t, err)
	require.True(t, cfg.RefreshSubmodules)
}

func TestContinuationStateRoundTrips(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, nil)

	_, err := GetContinuationState(scene.Dir)
	require.Error(t, err)

	state := &ContinuationState{
		Operation:       "refresh",
		Patch:           "fix-thing",
		TempPatch:       "refresh-temp",
		ConflictedFiles: []string{"a.txt"},
	}
	require.NoError(t, PersistContinuationState(scene.Dir, state))

	got, err := GetContinuationState(scene.Dir)
	require.NoError(t, err)
	require.Equal(t, state, got)

	require.NoError(t, ClearContinuationState(scene.Dir))
	_, err = GetContinuationState(scene.Dir)
	require.Error(t, err)
}
