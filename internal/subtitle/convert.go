// convert.go — Bidirectional SRT ⇄ WebVTT conversion.
//
// Conversion is deliberately tolerant: timestamps are rewritten by pattern
// match only, so a malformed time line passes through unchanged rather than
// aborting the document.
package subtitle

import (
	"regexp"
	"strconv"
	"strings"
)

// VTTSignature is the WebVTT file signature line.
const VTTSignature = "WEBVTT"

var (
	reIndexLine = regexp.MustCompile(`^\d+$`)
	reSRTStamp  = regexp.MustCompile(`(\d{2,}:\d{2}:\d{2}),(\d{3})`)
	reVTTStamp  = regexp.MustCompile(`(\d{2,}:\d{2}:\d{2})\.(\d{3})`)
)

// ToWebVTT converts an SRT document to WebVTT: strips each block's leading
// pure-numeric index line, rewrites "," millisecond separators to ".", and
// prepends the WEBVTT signature followed by a blank line.
//
// When the document already begins with the WEBVTT signature it is returned
// unchanged and converted is false.
func ToWebVTT(doc string) (out string, converted bool) {
	if IsWebVTT(doc) {
		return doc, false
	}

	var b strings.Builder
	b.WriteString(VTTSignature)
	b.WriteString("\n\n")
	for _, block := range SplitBlocks(doc) {
		lines := strings.Split(block, "\n")
		if len(lines) > 0 && reIndexLine.MatchString(strings.TrimSpace(lines[0])) {
			lines = lines[1:]
		}
		if len(lines) == 0 {
			continue
		}
		block = strings.Join(lines, "\n")
		block = reSRTStamp.ReplaceAllString(block, "$1.$2")
		b.WriteString(block)
		b.WriteString("\n\n")
	}
	return b.String(), true
}

// ToSRT converts a WebVTT document to SRT: strips the leading signature
// line, rewrites "." millisecond separators to ",", and prepends a 1-based
// sequential index line to each block.
//
// Blocks are numbered in source order, not by parsed start time. A document
// whose blocks are out of chronological order keeps that order and receives
// out-of-order indices; downstream players treat index values as opaque
// labels, so this is not corrected here.
func ToSRT(doc string) string {
	doc = NormalizeNewlines(doc)
	if IsWebVTT(doc) {
		// Drop the signature line; any header text on it goes with it.
		if i := strings.Index(doc, "\n"); i >= 0 {
			doc = doc[i+1:]
		} else {
			doc = ""
		}
	}

	var b strings.Builder
	n := 0
	for _, block := range SplitBlocks(doc) {
		lines := strings.Split(block, "\n")
		if len(lines) > 0 && reIndexLine.MatchString(strings.TrimSpace(lines[0])) {
			lines = lines[1:]
		}
		if len(lines) == 0 {
			continue
		}
		block = strings.Join(lines, "\n")
		block = reVTTStamp.ReplaceAllString(block, "$1,$2")

		n++
		b.WriteString(strconv.Itoa(n))
		b.WriteString("\n")
		b.WriteString(block)
		b.WriteString("\n\n")
	}
	return b.String()
}

// IsWebVTT reports whether the document begins with the WEBVTT signature.
func IsWebVTT(doc string) bool {
	doc = strings.TrimLeft(NormalizeNewlines(doc), "\ufeff \n")
	return strings.HasPrefix(doc, VTTSignature)
}
