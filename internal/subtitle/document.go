// document.go — Structured subtitle document model and upload gating.
package subtitle

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Format identifies one of the two recognised timed-text conventions.
type Format string

const (
	FormatSRT    Format = "srt"
	FormatWebVTT Format = "vtt"
)

// ErrUnsupportedExtension rejects an upload before any parsing happens.
var ErrUnsupportedExtension = errors.New("subtitle: unsupported file extension")

// ErrUnrecognizedFormat is returned when a document yields no parseable cues
// at all. Single malformed cues are skipped, not fatal.
var ErrUnrecognizedFormat = errors.New("subtitle: unrecognized document format")

// Cue is one timed caption unit. Index is meaningful only for SRT documents;
// it is zero for WebVTT cues.
type Cue struct {
	Index   int
	StartMs int64
	EndMs   int64
	Text    string
}

// Document is a parsed subtitle file.
type Document struct {
	Format Format
	Cues   []Cue
}

// reTimeLine matches an SRT or WebVTT cue time line and captures both stamps.
var reTimeLine = regexp.MustCompile(`^(\d{2,}:\d{2}:\d{2}[,.]\d{3})\s*-->\s*(\d{2,}:\d{2}:\d{2}[,.]\d{3})`)

// DetectFormat infers the document format from its first line: a WEBVTT
// signature means WebVTT, anything else is treated as SRT.
func DetectFormat(doc string) Format {
	if IsWebVTT(doc) {
		return FormatWebVTT
	}
	return FormatSRT
}

// Parse builds a structured Document from raw text. Blocks that do not
// contain a recognisable time line are skipped (best-effort, matching the
// tolerance of the string transforms). If no block parses at all, the
// document is unrecognised and an error is returned.
func Parse(doc string) (*Document, error) {
	format := DetectFormat(doc)

	blocks := SplitBlocks(doc)
	if format == FormatWebVTT && len(blocks) > 0 && strings.HasPrefix(blocks[0], VTTSignature) {
		blocks = blocks[1:]
	}

	var cues []Cue
	for _, block := range blocks {
		cue, ok := parseBlock(block)
		if !ok {
			continue
		}
		cues = append(cues, cue)
	}
	if len(cues) == 0 {
		return nil, fmt.Errorf("%w: no cues found", ErrUnrecognizedFormat)
	}
	return &Document{Format: format, Cues: cues}, nil
}

func parseBlock(block string) (Cue, bool) {
	lines := strings.Split(block, "\n")

	var cue Cue
	if len(lines) > 0 && reIndexLine.MatchString(strings.TrimSpace(lines[0])) {
		cue.Index, _ = strconv.Atoi(strings.TrimSpace(lines[0]))
		lines = lines[1:]
	}
	if len(lines) == 0 {
		return Cue{}, false
	}

	m := reTimeLine.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if m == nil {
		return Cue{}, false
	}
	start, err := ParseTimecode(m[1])
	if err != nil {
		return Cue{}, false
	}
	end, err := ParseTimecode(m[2])
	if err != nil {
		return Cue{}, false
	}

	cue.StartMs = start
	cue.EndMs = end
	cue.Text = strings.Join(lines[1:], "\n")
	return cue, true
}

// ValidateUploadExtension gates a subtitle upload by filename extension.
//
//	.srt, .vtt — parsed and convertible; convertible is true
//	.ass, .ssa — accepted and stored as-is, never parsed; convertible is false
//	anything else — ErrUnsupportedExtension
func ValidateUploadExtension(filename string) (convertible bool, err error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".srt", ".vtt":
		return true, nil
	case ".ass", ".ssa":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnsupportedExtension, filepath.Ext(filename))
	}
}
