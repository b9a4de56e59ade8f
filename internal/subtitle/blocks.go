// blocks.go — Cue-block splitting shared by conversion and editing.
//
// A subtitle document is a sequence of non-empty paragraphs separated by
// blank lines. Splitting does not parse cue content; each slot is the raw
// block text for downstream parsing.
package subtitle

import (
	"regexp"
	"strings"
)

var reBlankLines = regexp.MustCompile(`\n{2,}`)

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines(doc string) string {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	return strings.ReplaceAll(doc, "\r", "\n")
}

// SplitBlocks splits a raw document into its cue blocks. Line endings are
// normalised first, then the document is split on blank-line boundaries.
// Blocks consisting only of whitespace are discarded. The result is a pure
// function of the input.
func SplitBlocks(doc string) []string {
	doc = NormalizeNewlines(doc)

	raw := reBlankLines.Split(doc, -1)
	blocks := make([]string, 0, len(raw))
	for _, b := range raw {
		b = strings.Trim(b, "\n")
		if strings.TrimSpace(b) == "" {
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks
}
