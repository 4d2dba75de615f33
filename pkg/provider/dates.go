package provider

import (
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var errNoDigits = errors.New("no time information")

// layouts are tried before falling back to dateparse. The second entry is
// what the Android consumer sends (yyyy-MM-dd'T'HH:mmZZ).
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04-0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000-0700",
	time.DateOnly,
	time.DateTime,
}

// ParseDate parses value leniently. Values without a zone are interpreted in
// loc; a nil loc means UTC. Any parseable date is accepted, past or future.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	v := strings.TrimSpace(value)
	if !strings.ContainsAny(v, "0123456789") {
		return time.Time{}, errNoDigits
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return dateparse.ParseIn(v, loc)
}
