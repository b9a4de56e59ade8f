// shift.go — Whole-document timing shift.
package subtitle

import (
	"math"
	"regexp"
)

// reAnyStamp matches a timecode with either millisecond separator. The
// separator is captured so each occurrence is re-serialised with the
// separator it was found with; mixed-format documents are shifted
// consistently without being converted.
var reAnyStamp = regexp.MustCompile(`(\d{2,}):(\d{2}):(\d{2})([,.])(\d{3})`)

// Shift rewrites every timecode in the document by offsetSeconds (negative
// to rewind, positive to delay). Results below zero are clamped to
// 00:00:00,000; cues are never reordered or dropped. The offset is applied
// in whole milliseconds, rounded down.
//
// Returns the rewritten document and the number of timecodes rewritten.
// A matched substring that fails to parse is left untouched and does not
// count as rewritten.
func Shift(doc string, offsetSeconds float64) (string, int) {
	offsetMs := int64(math.Floor(offsetSeconds * 1000))

	n := 0
	out := reAnyStamp.ReplaceAllStringFunc(doc, func(stamp string) string {
		sep := stamp[len(stamp)-4]
		ms, err := ParseTimecode(stamp)
		if err != nil {
			return stamp
		}
		ms += offsetMs
		if ms < 0 {
			ms = 0
		}
		n++
		return FormatTimecode(ms, sep)
	})
	return out, n
}
