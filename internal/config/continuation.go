package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ContinuationState describes an in-progress operation left behind when a
// push/refresh/commit stops on a merge conflict (§4.4's "non-fatal transient
// status"). The functions below persist, read and clear it; the push,
// refresh and commit operations themselves neither write nor read it.
type ContinuationState struct {
	Operation       string   `json:"operation"`                 // "push", "refresh", "commit"
	Patch           string   `json:"patch,omitempty"`            // patch the conflict was merging into
	TempPatch       string   `json:"tempPatch,omitempty"`        // refresh's synthesized temp patch, if any
	ConflictedFiles []string `json:"conflictedFiles,omitempty"`
}

const continuationFileName = ".patchstack_continue"

// GetContinuationState reads the continuation state from disk.
func GetContinuationState(repoRoot string) (*ContinuationState, error) {
	path := filepath.Join(repoRoot, ".git", continuationFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no continuation state found")
		}
		return nil, fmt.Errorf("failed to read continuation state: %w", err)
	}

	var state ContinuationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse continuation state: %w", err)
	}
	return &state, nil
}

// PersistContinuationState writes the continuation state to disk.
func PersistContinuationState(repoRoot string, state *ContinuationState) error {
	path := filepath.Join(repoRoot, ".git", continuationFileName)
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal continuation state: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// ClearContinuationState removes the continuation state file.
func ClearContinuationState(repoRoot string) error {
	path := filepath.Join(repoRoot, ".git", continuationFileName)
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear continuation state: %w", err)
	}
	return nil
}
