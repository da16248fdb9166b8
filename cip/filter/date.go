package filter

import (
	"regexp"
	"strconv"
	"time"
)

// datePattern matches the serialized date wire format, e.g. "/Date(1318781876000)/".
var datePattern = regexp.MustCompile(`/Date\((\d+)\)/`)

// DateFilter turns serialized dates into time.Time values in UTC.
//
// The embedded integer is milliseconds since the Unix epoch. It is divided by
// 1000, so sub-second precision is dropped.
type DateFilter struct{}

// Apply implements Filter.
func (DateFilter) Apply(_, _, _ string, value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	if t, ok := ParseDate(s); ok {
		return t
	}
	return value
}

// ParseDate extracts the date embedded in s. It reports false when s does not
// carry the wire format or the number does not fit in an int64.
func ParseDate(s string) (time.Time, bool) {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(ms/1000, 0).UTC(), true
}
