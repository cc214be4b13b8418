package text

import (
	"regexp"
	"strings"

	"connectdj/internal/core"
)

var tracklistLineRegex = regexp.MustCompile(`^((?:\d{2}:)?\d{2}:\d{2})[ \t]+(.*)$`)

// ParseTracklist extracts (timestamp, label) pairs from a free-text media
// description in textual order and converts the cumulative timestamps into
// contiguous segments. Each label runs until the next timestamped line or the
// end of the text. The final segment's duration is left at zero: its end is
// determined by the playback layer from the total stream length.
//
// Descriptions without any timestamped lines yield nil; that is a normal
// case, not an error.
func ParseTracklist(description string) []core.Segment {
	type entry struct {
		label string
		stamp int
	}

	var entries []entry

	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimRight(line, "\r")

		m := tracklistLineRegex.FindStringSubmatch(line)
		if m == nil {
			// Label text continues over following lines until the next
			// timestamped line.
			if trimmed := strings.TrimSpace(line); trimmed != "" && len(entries) > 0 {
				last := &entries[len(entries)-1]
				last.label += " " + trimmed
			}
			continue
		}

		stamp, err := ParseDuration(m[1])
		if err != nil {
			continue
		}

		entries = append(entries, entry{label: strings.TrimSpace(m[2]), stamp: stamp})
	}

	if len(entries) == 0 {
		return nil
	}

	segments := make([]core.Segment, 0, len(entries))
	for i, e := range entries {
		seg := core.Segment{Label: e.label, Start: e.stamp}
		if i+1 < len(entries) {
			seg.Duration = entries[i+1].stamp - e.stamp
		}
		segments = append(segments, seg)
	}

	return segments
}
