package stack

import (
	"encoding/json"

	"patchstack.dev/patchstack/internal/errs"
)

// document is the on-disk JSON shape of a stack-state blob (§6, §9 open
// question: versioned explicitly, hidden always its own array).
type document struct {
	Version   int               `json:"version"`
	Head      string            `json:"head"`
	Applied   []string          `json:"applied"`
	Unapplied []string          `json:"unapplied"`
	Hidden    []string          `json:"hidden"`
	Patches   map[string]string `json:"patches"`
	Prev      string            `json:"prev,omitempty"`
}

// Encode serializes s as the schema-versioned JSON document stored in the
// metadata reference's blob.
func Encode(s State) (string, error) {
	doc := document{
		Version:   SchemaVersion,
		Head:      s.Head,
		Applied:   orEmpty(s.Applied),
		Unapplied: orEmpty(s.Unapplied),
		Hidden:    orEmpty(s.Hidden),
		Patches:   s.Patches,
		Prev:      s.Prev,
	}
	if doc.Patches == nil {
		doc.Patches = map[string]string{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errs.Wrap("stack", err)
	}
	return string(data) + "\n", nil
}

// Decode parses the JSON document stored at the metadata ref's blob back
// into a State, rejecting any schema version this build does not recognize.
func Decode(data string) (State, error) {
	var doc document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return State{}, errs.Wrap("stack", err)
	}
	if doc.Version != SchemaVersion {
		return State{}, &errs.StackUnknownVersionError{Version: doc.Version}
	}
	s := State{
		Head:      doc.Head,
		Applied:   doc.Applied,
		Unapplied: doc.Unapplied,
		Hidden:    doc.Hidden,
		Patches:   doc.Patches,
		Prev:      doc.Prev,
	}
	if s.Patches == nil {
		s.Patches = map[string]string{}
	}
	return s, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
