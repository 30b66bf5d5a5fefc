// Package stack implements the stack state model and its binding to a VCS
// branch: the ordered applied/unapplied/hidden patch sequences, the
// metadata reference they are persisted under, and the invariant checks
// that gate every mutation.
package stack

import (
	"patchstack.dev/patchstack/internal/errs"
	"patchstack.dev/patchstack/internal/patchname"
)

// SchemaVersion is the only stack-state document version this
// implementation understands (§9 open question: reject unknown versions
// explicitly rather than guessing at an older layout).
const SchemaVersion = 1

// State is the immutable snapshot described in spec §3. Every mutation
// produces a new State; nothing here is mutated in place.
type State struct {
	Head      string
	Applied   []string
	Unapplied []string
	Hidden    []string
	Patches   map[string]string // patch name -> commit id
	Prev      string            // "" if this is the first state
}

// Empty returns the zero stack state bound to head, with no patches.
func Empty(head string) State {
	return State{
		Head:    head,
		Patches: map[string]string{},
	}
}

// Top returns the name of the topmost applied patch, or "" if none.
func (s State) Top() string {
	if len(s.Applied) == 0 {
		return ""
	}
	return s.Applied[len(s.Applied)-1]
}

// TopCommit returns the commit id of the top patch, or "" if none.
func (s State) TopCommit() string {
	top := s.Top()
	if top == "" {
		return ""
	}
	return s.Patches[top]
}

// AllPatches returns every patch name across all three sequences, in
// applied-then-unapplied-then-hidden order (original_source's
// `all_patches()` iteration order).
func (s State) AllPatches() []string {
	all := make([]string, 0, len(s.Applied)+len(s.Unapplied)+len(s.Hidden))
	all = append(all, s.Applied...)
	all = append(all, s.Unapplied...)
	all = append(all, s.Hidden...)
	return all
}

// AppliedAndUnapplied returns applied then unapplied, the order commit sorts
// an explicit patch list into (§4.6).
func (s State) AppliedAndUnapplied() []string {
	all := make([]string, 0, len(s.Applied)+len(s.Unapplied))
	all = append(all, s.Applied...)
	all = append(all, s.Unapplied...)
	return all
}

// HasPatch reports whether name is present in any sequence.
func (s State) HasPatch(name string) bool {
	_, ok := s.Patches[name]
	return ok
}

// CommitOf returns the commit id recorded for name, failing PatchNotFound if
// absent.
func (s State) CommitOf(name string) (string, error) {
	id, ok := s.Patches[name]
	if !ok {
		return "", &errs.PatchNotFoundError{Name: name}
	}
	return id, nil
}

// WithHead returns a copy of s with Head and Prev replaced, per §4.2
// advance_head(new_head, prev_state_id).
func (s State) WithHead(newHead, prevStateID string) State {
	next := s.clone()
	next.Head = newHead
	next.Prev = prevStateID
	return next
}

// WithApplied returns a copy of s with the applied sequence replaced.
func (s State) WithApplied(applied []string) State {
	next := s.clone()
	next.Applied = append([]string(nil), applied...)
	return next
}

// WithUnapplied returns a copy of s with the unapplied sequence replaced.
func (s State) WithUnapplied(unapplied []string) State {
	next := s.clone()
	next.Unapplied = append([]string(nil), unapplied...)
	return next
}

// WithHidden returns a copy of s with the hidden sequence replaced.
func (s State) WithHidden(hidden []string) State {
	next := s.clone()
	next.Hidden = append([]string(nil), hidden...)
	return next
}

// WithPatch returns a copy of s with patch name bound to commitID in the
// patch map (the sequences are untouched; callers update the relevant
// sequence separately).
func (s State) WithPatch(name, commitID string) State {
	next := s.clone()
	next.Patches[name] = commitID
	return next
}

// WithoutPatch returns a copy of s with name removed from the patch map.
func (s State) WithoutPatch(name string) State {
	next := s.clone()
	delete(next.Patches, name)
	return next
}

// RenamePatch returns a copy of s with old renamed to new wherever it
// appears (sequences and the patch map). Fails PatchNameExists if new
// already names a different patch.
func (s State) RenamePatch(old, new string) (State, error) {
	if old == new {
		return s, nil
	}
	if s.HasPatch(new) {
		return State{}, &errs.PatchNameExistsError{Name: new}
	}
	next := s.clone()
	commitID := next.Patches[old]
	delete(next.Patches, old)
	next.Patches[new] = commitID
	renameIn := func(seq []string) []string {
		out := make([]string, len(seq))
		for i, n := range seq {
			if n == old {
				out[i] = new
			} else {
				out[i] = n
			}
		}
		return out
	}
	next.Applied = renameIn(next.Applied)
	next.Unapplied = renameIn(next.Unapplied)
	next.Hidden = renameIn(next.Hidden)
	return next, nil
}

func (s State) clone() State {
	next := State{
		Head:      s.Head,
		Applied:   append([]string(nil), s.Applied...),
		Unapplied: append([]string(nil), s.Unapplied...),
		Hidden:    append([]string(nil), s.Hidden...),
		Patches:   make(map[string]string, len(s.Patches)),
		Prev:      s.Prev,
	}
	for k, v := range s.Patches {
		next.Patches[k] = v
	}
	return next
}

// Validate checks the §3 invariants that can be checked from the snapshot
// alone (object-store existence and first-parent chaining require the
// repository and are checked by the binding layer, not here).
func (s State) Validate() error {
	seen := map[string]string{}
	for _, seq := range [][]string{s.Applied, s.Unapplied, s.Hidden} {
		for _, name := range seq {
			if prior, ok := seen[name]; ok {
				return &errs.TransactionError{Reason: "patch " + name + " appears in both " + prior + " and another sequence"}
			}
			seen[name] = "a sequence"
			if _, err := patchname.Parse(name); err != nil {
				return err
			}
		}
	}
	if len(seen) != len(s.Patches) {
		return &errs.TransactionError{Reason: "patch map does not match the union of applied/unapplied/hidden"}
	}
	for name := range seen {
		if _, ok := s.Patches[name]; !ok {
			return &errs.PatchNotFoundError{Name: name}
		}
	}
	return nil
}
