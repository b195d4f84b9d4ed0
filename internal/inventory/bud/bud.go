// Package bud parses beyond-use-date shelf lives from drug master fields.
// Master sheets record them as free text ("30 days", "7 วัน", "14"), so the
// day count is the first run of digits in the value.
package bud

import "regexp"

var dayPattern = regexp.MustCompile(`\d+`)

// ParseDays extracts the day count from a BUD field. Values with no digits
// fall back to the given default.
func ParseDays(value string, fallback int) int {
	match := dayPattern.FindString(value)
	if match == "" {
		return fallback
	}

	days := 0
	for _, ch := range match {
		days = days*10 + int(ch-'0')
		if days > 100000 {
			return fallback
		}
	}
	return days
}
