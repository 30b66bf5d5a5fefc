package stackops

import (
	"patchstack.dev/patchstack/internal/stack"
)

// PatchEntry is one row of a stack listing.
type PatchEntry struct {
	Name    string
	CommitID string
	Subject string
	Status  string // "top", "applied", "unapplied", "hidden"
}

// Log lists applied, unapplied, and (if includeHidden) hidden patches with
// their commit subjects. Read-only: it neither writes a new stack-state
// commit nor touches any ref.
func Log(s *stack.Stack, includeHidden bool) ([]PatchEntry, error) {
	st := s.State()
	var entries []PatchEntry

	for i, name := range st.Applied {
		commitID, err := st.CommitOf(name)
		if err != nil {
			return nil, err
		}
		subject, err := subjectOf(s, commitID)
		if err != nil {
			return nil, err
		}
		status := "applied"
		if i == len(st.Applied)-1 {
			status = "top"
		}
		entries = append(entries, PatchEntry{Name: name, CommitID: commitID, Subject: subject, Status: status})
	}

	for _, name := range st.Unapplied {
		commitID, err := st.CommitOf(name)
		if err != nil {
			return nil, err
		}
		subject, err := subjectOf(s, commitID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, PatchEntry{Name: name, CommitID: commitID, Subject: subject, Status: "unapplied"})
	}

	if includeHidden {
		for _, name := range st.Hidden {
			commitID, err := st.CommitOf(name)
			if err != nil {
				return nil, err
			}
			subject, err := subjectOf(s, commitID)
			if err != nil {
				return nil, err
			}
			entries = append(entries, PatchEntry{Name: name, CommitID: commitID, Subject: subject, Status: "hidden"})
		}
	}

	return entries, nil
}

func subjectOf(s *stack.Stack, commitID string) (string, error) {
	msg, err := s.Repo().CommitMessage(commitID)
	if err != nil {
		return "", err
	}
	for i, c := range msg {
		if c == '\n' {
			return msg[:i], nil
		}
	}
	return msg, nil
}
