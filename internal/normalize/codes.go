package normalize

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// ProcedureCode trims whitespace, drops a trailing "-NN" modifier, uppercases,
// and strips non-alphanumeric characters. " 99214-25 " becomes "99214".
func ProcedureCode(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '-'); i > 0 {
		s = s[:i]
	}
	if s == "" {
		return ""
	}
	return nonAlphanumeric.ReplaceAllString(strings.ToUpper(s), "")
}

var zipPattern = regexp.MustCompile(`^(\d{5})(?:-?\d{4})?$`)

// PostalCode reduces a US ZIP or ZIP+4 to its 5-digit form.
// ok is false when the input is not a recognizable ZIP.
func PostalCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	m := zipPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}
