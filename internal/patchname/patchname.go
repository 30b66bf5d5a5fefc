// Package patchname implements the validated patch identifier: parsing,
// sanitized construction, and uniquification against a stack's existing
// names.
package patchname

import (
	"strings"

	"patchstack.dev/patchstack/internal/errs"
)

// MaxLen is the default length limit applied by Make when the caller does
// not specify one.
const MaxLen = 52

// reserved names a patch may never take: they collide with well-known
// branch-relative refs or directory entries used elsewhere in the stack.
var reserved = map[string]bool{
	"":          true,
	".":         true,
	"..":        true,
	"base":      true,
	"HEAD":      true,
	"patches":   true,
	"unapplied": true,
	"hidden":    true,
}

// Parse validates s against the patch-name grammar: non-empty, no leading
// dot, no whitespace or control characters, composed of letters, digits and
// the separators '-', '_', '.', '/', and not a reserved name.
func Parse(s string) (string, error) {
	if s == "" || reserved[s] {
		return "", &errs.InvalidPatchNameError{Name: s}
	}
	if strings.HasPrefix(s, ".") {
		return "", &errs.InvalidPatchNameError{Name: s}
	}
	if len(s) > 255 {
		return "", &errs.InvalidPatchNameError{Name: s}
	}
	for _, r := range s {
		if r <= 0x1f || r == 0x7f {
			return "", &errs.InvalidPatchNameError{Name: s}
		}
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.' || r == '/':
		default:
			return "", &errs.InvalidPatchNameError{Name: s}
		}
	}
	if strings.Contains(s, "//") || strings.Contains(s, "..") || strings.HasSuffix(s, "/") {
		return "", &errs.InvalidPatchNameError{Name: s}
	}
	return s, nil
}

// Make sanitizes desired into a candidate patch name: characters outside the
// grammar are replaced with '-', runs of the separator are collapsed, and
// the result is trimmed to lenLimit (0 means MaxLen, a negative value means
// unlimited). allowDots controls whether '.' is kept as-is (true, useful
// when the desired name is itself derived from a commit subject containing
// sentence punctuation) or also replaced (false).
func Make(desired string, allowDots bool, lenLimit int) string {
	if lenLimit == 0 {
		lenLimit = MaxLen
	}

	var b strings.Builder
	lastWasSep := false
	for _, r := range strings.ToLower(desired) {
		var keep rune
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			keep = r
		case r == '-' || r == '_' || r == '/':
			keep = r
		case r == '.' && allowDots:
			keep = r
		case r == ' ' || r == '\t' || r == '\n':
			keep = '-'
		default:
			keep = '-'
		}
		if keep == '-' {
			if lastWasSep || b.Len() == 0 {
				continue
			}
			lastWasSep = true
			b.WriteRune(keep)
			continue
		}
		lastWasSep = false
		b.WriteRune(keep)
	}

	out := strings.Trim(b.String(), "-_./")
	if lenLimit > 0 && len(out) > lenLimit {
		out = out[:lenLimit]
		out = strings.TrimRight(out, "-_./")
	}
	if out == "" {
		out = "patch"
	}
	return out
}

// Uniquify returns desired unchanged if it appears in allow (an acceptable
// collision, e.g. the patch's own prior name during a rename) or does not
// appear in disallow. Otherwise it appends "-1", "-2", ... until the
// candidate is absent from disallow.
func Uniquify(desired string, allow, disallow []string) string {
	for _, a := range allow {
		if a == desired {
			return desired
		}
	}
	if !contains(disallow, desired) {
		return desired
	}
	for i := 1; ; i++ {
		candidate := desired + suffix(i)
		if !contains(disallow, candidate) {
			return candidate
		}
	}
}

func suffix(i int) string {
	return "-" + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
