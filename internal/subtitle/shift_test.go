package subtitle

import "testing"

func TestShiftForward(t *testing.T) {
	in := "1\n00:00:01,000 --> 00:00:03,500\nHello\n\n"
	want := "1\n00:00:02,500 --> 00:00:05,000\nHello\n\n"
	got, n := Shift(in, 1.5)
	if got != want {
		t.Errorf("Shift = %q, want %q", got, want)
	}
	if n != 2 {
		t.Errorf("rewritten = %d, want 2", n)
	}
}

func TestShiftBackwardClampsToZero(t *testing.T) {
	in := "00:00:10,000 --> 00:00:12,000\ntext\n"
	want := "00:00:00,000 --> 00:00:00,000\ntext\n"
	got, n := Shift(in, -15)
	if got != want {
		t.Errorf("Shift = %q, want %q", got, want)
	}
	if n != 2 {
		t.Errorf("rewritten = %d, want 2", n)
	}
}

func TestShiftPreservesSeparators(t *testing.T) {
	// Mixed-format document: each stamp keeps the separator it was found with.
	in := "00:00:01,000 --> 00:00:02,000\n\n00:00:03.000 --> 00:00:04.000\n"
	got, n := Shift(in, 1)
	want := "00:00:02,000 --> 00:00:03,000\n\n00:00:04.000 --> 00:00:05.000\n"
	if got != want {
		t.Errorf("Shift = %q, want %q", got, want)
	}
	if n != 4 {
		t.Errorf("rewritten = %d, want 4", n)
	}
}

// shift(shift(D, x), -x) restores the original timestamps when nothing
// was clamped.
func TestShiftInverseUnclamped(t *testing.T) {
	in := "1\n00:01:00,000 --> 00:01:05,000\na\n\n2\n00:02:00,000 --> 00:02:03,000\nb\n\n"
	mid, _ := Shift(in, 42.5)
	out, _ := Shift(mid, -42.5)
	if out != in {
		t.Errorf("inverse shift: got %q, want %q", out, in)
	}
}

// Clamping breaks exact invertibility: once a stamp hits zero the original
// value is unrecoverable.
func TestShiftInverseClamped(t *testing.T) {
	in := "00:00:05,000 --> 00:00:06,000\nx\n"
	mid, _ := Shift(in, -10)
	out, _ := Shift(mid, 10)
	want := "00:00:10,000 --> 00:00:10,000\nx\n"
	if out != want {
		t.Errorf("clamped inverse: got %q, want %q", out, want)
	}
}

func TestShiftLeavesNonTimecodesAlone(t *testing.T) {
	in := "version 12:34 draft\nno stamps here\n"
	got, n := Shift(in, 5)
	if got != in {
		t.Errorf("Shift altered non-timecode text: %q", got)
	}
	if n != 0 {
		t.Errorf("rewritten = %d, want 0", n)
	}
}

func TestShiftFractionalOffsetRoundsDown(t *testing.T) {
	got, _ := Shift("00:00:01,000 --> 00:00:02,000\n", 0.0019)
	want := "00:00:01,001 --> 00:00:02,001\n"
	if got != want {
		t.Errorf("Shift = %q, want %q", got, want)
	}
}
