package normalize

import (
	"strings"

	"github.com/seqflow/seqflow/pkg/errors"
)

// CanonicalName normalizes a field name so user-supplied names need not
// exactly match source column headers: lower-case, with every run of
// non-alphanumeric characters collapsed to a single underscore. Leading and
// trailing separators are dropped.
//
// "Session Key", "session-key", and "SESSION_KEY" all canonicalize to
// "session_key".
func CanonicalName(name string) string {
	var sb strings.Builder
	pendingSep := false

	for _, r := range strings.ToLower(name) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingSep = sb.Len() > 0
			continue
		}
		if pendingSep {
			sb.WriteByte('_')
			pendingSep = false
		}
		sb.WriteRune(r)
	}

	return sb.String()
}

// ResolveField maps a user-supplied field name onto one of the available
// column names by comparing canonical forms. The first matching column in
// source order wins. Returns a MissingField error when nothing matches.
func ResolveField(columns []string, field string) (string, error) {
	want := CanonicalName(field)
	for _, col := range columns {
		if CanonicalName(col) == want {
			return col, nil
		}
	}
	return "", errors.MissingField(field, columns)
}
