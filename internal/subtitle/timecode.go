// Package subtitle implements the Perch subtitle transcoding pipeline:
// timecode parsing, SRT/WebVTT conversion, timing shift, and bulk text edits.
//
// All operations are pure string transforms. Documents are small (a feature
// film is a few hundred KB of text), so whole-document regeneration is used
// throughout instead of incremental editing.
//
// Two formats are recognised:
//   - SRT:    numeric cue index line, "," millisecond separator, no signature
//   - WebVTT: "WEBVTT" signature line, "." millisecond separator
package subtitle

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrMalformedTimecode is returned when a timecode string does not match
// the HH:MM:SS{,|.}mmm pattern.
var ErrMalformedTimecode = errors.New("subtitle: malformed timecode")

// reTimecode matches a full timecode string: HH:MM:SS followed by a "," or
// "." separator and exactly three millisecond digits. The hour field is two
// or more digits and is not wrapped at 24.
var reTimecode = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2})([,.])(\d{3})$`)

// ParseTimecode parses "HH:MM:SS,mmm" or "HH:MM:SS.mmm" into integer
// milliseconds. Returns ErrMalformedTimecode when the input does not match.
func ParseTimecode(s string) (int64, error) {
	m := reTimecode.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTimecode, s)
	}
	hours, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTimecode, s)
	}
	minutes, _ := strconv.ParseInt(m[2], 10, 64)
	seconds, _ := strconv.ParseInt(m[3], 10, 64)
	millis, _ := strconv.ParseInt(m[5], 10, 64)

	return ((hours*60+minutes)*60+seconds)*1000 + millis, nil
}

// FormatTimecode renders integer milliseconds as "HH:MM:SS<sep>mmm".
// H/M/S fields are zero-padded to two digits, milliseconds to three.
// The hour field grows beyond two digits for very long durations.
// sep must be ',' (SRT) or '.' (WebVTT).
func FormatTimecode(ms int64, sep byte) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / 3600000
	minutes := (ms % 3600000) / 60000
	seconds := (ms % 60000) / 1000
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, seconds, sep, millis)
}
