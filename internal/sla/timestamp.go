package sla

import (
	"strings"
	"time"
)

// Day-first layouts are tried before year-first ones, so "03-04-2024" is the
// 3rd of April. Go's "2" and "1" accept one or two digits.
var timestampLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2-1-2006",
	"2.1.2006 15:04:05",
	"2.1.2006 15:04",
	"2.1.2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	time.RFC3339,
}

// ParseTimestamp parses a textual timestamp using the day-first convention.
// Unparseable input returns ok == false instead of an error; callers drop
// such rows.
func ParseTimestamp(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	s = stripFraction(s)
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			return v.UTC(), true
		}
	}
	return time.Time{}, false
}

// stripFraction removes a fractional-seconds suffix ("10:15:30.250") so the
// seconds layouts above still match. Timestamps are compared at second
// resolution.
func stripFraction(s string) string {
	colon := strings.LastIndexByte(s, ':')
	if colon < 0 {
		return s
	}
	dot := strings.IndexByte(s[colon:], '.')
	if dot < 0 {
		return s
	}
	end := colon + dot + 1
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:colon+dot] + s[end:]
}
