package errors

import "strings"

// User-safe categorical messages. The raw error text may contain host names,
// usernames, or credential hints, so it is logged internally and replaced
// with one of these before reaching a caller.
const (
	MsgAccessError     = "Database access error"
	MsgSyntaxError     = "SQL syntax error"
	MsgQueryTimeout    = "Database query timeout"
	MsgMissingTable    = "Requested table does not exist"
	MsgMissingColumn   = "Requested column does not exist"
	MsgGenerationError = "Query generation failed"
	MsgGenericFailure  = "Database query failed"
)

// sanitizeRules maps known substrings of lower-cased driver error text to a
// categorical message. First match wins, so more specific phrases come first.
var sanitizeRules = []struct {
	substr  string
	message string
}{
	{"password authentication failed", MsgAccessError},
	{"authentication failed", MsgAccessError},
	{"permission denied", MsgAccessError},
	{"access denied", MsgAccessError},
	{"connection refused", MsgAccessError},
	{"no such host", MsgAccessError},
	{"syntax error", MsgSyntaxError},
	{"parser error", MsgSyntaxError},
	{"statement timeout", MsgQueryTimeout},
	{"context deadline exceeded", MsgQueryTimeout},
	{"timeout", MsgQueryTimeout},
	{"does not exist", ""}, // refined below against table/column phrasing
	{"no such table", MsgMissingTable},
	{"no such column", MsgMissingColumn},
}

// Sanitize maps an underlying error to a fixed category-level message that
// deliberately discards diagnostic detail. Unmatched phrasings fall through
// to the generic message rather than leaking anything novel.
func Sanitize(err error) string {
	if err == nil {
		return MsgGenericFailure
	}

	if IsType(err, ErrTypeGeneration) {
		return MsgGenerationError
	}

	text := strings.ToLower(err.Error())

	for _, rule := range sanitizeRules {
		if !strings.Contains(text, rule.substr) {
			continue
		}

		if rule.message != "" {
			return rule.message
		}

		// "... does not exist" is shared by missing relations and missing
		// columns; disambiguate on the noun the driver used.
		switch {
		case strings.Contains(text, "relation") || strings.Contains(text, "table"):
			return MsgMissingTable
		case strings.Contains(text, "column"):
			return MsgMissingColumn
		}
	}

	return MsgGenericFailure
}
