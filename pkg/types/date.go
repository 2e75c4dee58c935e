package types

import (
	"strings"
	"time"
)

// DateLayout is the day/month/year layout used by movement dates.
// Day and month may have one or two digits.
const DateLayout = "2/1/2006"

// datePrefix is the label some portals render inside the date cell.
const datePrefix = "Fecha:"

// CleanDate strips the "Fecha:" label and surrounding whitespace from a raw
// movement date. It is idempotent. Only a leading label is removed; the
// text elsewhere in the cell is left as rendered.
func CleanDate(raw string) string {
	s := strings.TrimSpace(raw)
	for strings.HasPrefix(s, datePrefix) {
		s = strings.TrimSpace(strings.TrimPrefix(s, datePrefix))
	}
	return s
}

// ParseDate cleans raw and parses it with DateLayout. It reports false when
// the text is empty or not a valid calendar date.
func ParseDate(raw string) (time.Time, bool) {
	s := CleanDate(raw)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Date returns the movement's normalized date, or false when RawDate is
// empty or malformed.
func (m Movement) Date() (time.Time, bool) {
	return ParseDate(m.RawDate)
}
