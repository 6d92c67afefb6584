// Package dateparse normalizes user-supplied time bounds into the form the
// Fastly stats API accepts.
package dateparse

import (
	"strconv"
	"time"
)

// layouts are tried in order; RFC3339Nano also accepts fractional seconds.
var layouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
}

// Normalize converts an RFC 3339 timestamp into Unix epoch seconds.
// Anything else is returned unchanged so that expressions the API understands
// natively ("2 hours ago", "yesterday", a raw epoch) pass straight through.
func Normalize(input string) string {
	if t, ok := parseRFC3339(input); ok {
		return strconv.FormatInt(t.Unix(), 10)
	}
	return input
}

// IsTimestamp reports whether input would be converted by Normalize.
func IsTimestamp(input string) bool {
	_, ok := parseRFC3339(input)
	return ok
}

func parseRFC3339(input string) (time.Time, bool) {
	if input == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
