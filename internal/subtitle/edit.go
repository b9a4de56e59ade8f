// edit.go — Bulk text edits over a raw subtitle document.
package subtitle

import (
	"regexp"
	"strings"
)

// Tag patterns stop at line boundaries so an unclosed delimiter cannot
// swallow the following time line or the blank line between cues.
var (
	reAngleTag = regexp.MustCompile(`<[^>\n]*>`)
	reBraceTag = regexp.MustCompile(`\{[^}\n]*\}`)
)

// SearchReplace replaces every non-overlapping occurrence of the literal
// substring search with replace, across the entire document including index
// lines and timestamps. Returns the edited document and the number of
// occurrences replaced. An empty search term matches nothing.
func SearchReplace(doc, search, replace string) (string, int) {
	if search == "" {
		return doc, 0
	}
	n := strings.Count(doc, search)
	if n == 0 {
		return doc, 0
	}
	return strings.ReplaceAll(doc, search, replace), n
}

// StripFormatting removes every <...> and {...} delimited substring on the
// assumption they are inline style or positioning directives rather than cue
// text. The strip is lossy and best-effort; timestamps and cue boundaries
// are not altered.
func StripFormatting(doc string) string {
	doc = reAngleTag.ReplaceAllString(doc, "")
	return reBraceTag.ReplaceAllString(doc, "")
}
