// Package text provides duration, tracklist, and link-label parsing for
// catalog and media metadata.
package text

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"connectdj/internal/core"
)

var durationRegex = regexp.MustCompile(`^(\d{2}:)?\d{2}:\d{2}$`)

// FormatDuration renders integer seconds as HH:MM:SS, or MM:SS when there is
// no hour component. Fields are zero-padded to two digits.
func FormatDuration(seconds int) string {
	minutes := seconds / 60
	seconds %= 60
	hours := minutes / 60
	minutes %= 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// ParseDuration is the inverse of FormatDuration. The leftmost group is read
// as hours only when three groups are present. Returns a core.FormatError
// for anything outside the MM:SS / HH:MM:SS grammar.
func ParseDuration(dur string) (int, error) {
	if !durationRegex.MatchString(dur) {
		return 0, &core.FormatError{Input: dur}
	}

	seconds := 0
	for _, part := range strings.Split(dur, ":") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, &core.FormatError{Input: dur}
		}
		seconds = seconds*60 + n
	}

	return seconds, nil
}
