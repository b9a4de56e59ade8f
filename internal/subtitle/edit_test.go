package subtitle

import "testing"

func TestSearchReplace(t *testing.T) {
	doc := "1\n00:00:01,000 --> 00:00:02,000\ncolour of the colour wheel\n\n"
	got, n := SearchReplace(doc, "colour", "color")
	if n != 2 {
		t.Errorf("matchCount = %d, want 2", n)
	}
	want := "1\n00:00:01,000 --> 00:00:02,000\ncolor of the color wheel\n\n"
	if got != want {
		t.Errorf("SearchReplace = %q, want %q", got, want)
	}
}

func TestSearchReplaceNoMatch(t *testing.T) {
	doc := "hello\n"
	got, n := SearchReplace(doc, "missing", "x")
	if n != 0 || got != doc {
		t.Errorf("SearchReplace = (%q, %d), want unchanged with 0", got, n)
	}
}

func TestSearchReplaceLiteral(t *testing.T) {
	// The search term is literal, never a pattern.
	doc := "a.c abc a.c\n"
	got, n := SearchReplace(doc, "a.c", "X")
	if n != 2 {
		t.Errorf("matchCount = %d, want 2", n)
	}
	if got != "X abc X\n" {
		t.Errorf("SearchReplace = %q", got)
	}
}

func TestSearchReplaceEmptySearch(t *testing.T) {
	doc := "abc"
	got, n := SearchReplace(doc, "", "x")
	if n != 0 || got != doc {
		t.Errorf("empty search must match nothing, got (%q, %d)", got, n)
	}
}

func TestSearchReplaceCountsNonOverlapping(t *testing.T) {
	_, n := SearchReplace("aaaa", "aa", "b")
	if n != 2 {
		t.Errorf("matchCount = %d, want 2 (non-overlapping)", n)
	}
}

func TestStripFormatting(t *testing.T) {
	doc := "1\n00:00:01,000 --> 00:00:02,000\n<i>Hello</i> {\\an8}world\n\n"
	got := StripFormatting(doc)
	want := "1\n00:00:01,000 --> 00:00:02,000\nHello world\n\n"
	if got != want {
		t.Errorf("StripFormatting = %q, want %q", got, want)
	}
}

func TestStripFormattingKeepsTimestampsAndBoundaries(t *testing.T) {
	doc := "<b>a</b>\n\n00:00:01,000 --> 00:00:02,000\n{pos(1,2)}b\n\n"
	got := StripFormatting(doc)
	want := "a\n\n00:00:01,000 --> 00:00:02,000\nb\n\n"
	if got != want {
		t.Errorf("StripFormatting = %q, want %q", got, want)
	}
}

func TestStripFormattingUnclosedTag(t *testing.T) {
	// An unclosed delimiter must not swallow following lines.
	doc := "<i oops\n00:00:01,000 --> 00:00:02,000\ntext\n"
	got := StripFormatting(doc)
	if got != doc {
		t.Errorf("unclosed tag crossed a line boundary: %q", got)
	}
}
