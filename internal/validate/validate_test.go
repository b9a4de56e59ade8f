package validate_test

import (
	"testing"

	"github.com/yourflock/perch/internal/validate"
)

func TestNonEmptyString(t *testing.T) {
	if err := validate.NonEmptyString("name", "hello"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := validate.NonEmptyString("name", "   "); err == nil {
		t.Error("expected error for whitespace-only string")
	}
	if err := validate.NonEmptyString("name", ""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestMaxLength(t *testing.T) {
	if err := validate.MaxLength("name", "hello", 10); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := validate.MaxLength("name", "hello world!", 5); err == nil {
		t.Error("expected error for too-long string")
	}
}

func TestIsAlphanumericSlug(t *testing.T) {
	valid := []string{"movie-1", "ep_02", "Tt0111161"}
	for _, v := range valid {
		if err := validate.IsAlphanumericSlug("content_id", v); err != nil {
			t.Errorf("%q: expected nil, got %v", v, err)
		}
	}
	invalid := []string{"", "-leading", "a/b", "a b", "' OR 1=1 --"}
	for _, v := range invalid {
		if err := validate.IsAlphanumericSlug("content_id", v); err == nil {
			t.Errorf("%q: expected error", v)
		}
	}
}

func TestIsLanguageCode(t *testing.T) {
	valid := []string{"en", "en-US", "fra"}
	for _, v := range valid {
		if err := validate.IsLanguageCode("language", v); err != nil {
			t.Errorf("%q: expected nil, got %v", v, err)
		}
	}
	invalid := []string{"", "english", "EN", "en_US", "e"}
	for _, v := range invalid {
		if err := validate.IsLanguageCode("language", v); err == nil {
			t.Errorf("%q: expected error", v)
		}
	}
}

func TestIntInRange(t *testing.T) {
	if err := validate.IntInRange("position", 30, 0, 86400); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := validate.IntInRange("position", -1, 0, 86400); err == nil {
		t.Error("expected error for below-range value")
	}
}

func TestNoPathTraversal(t *testing.T) {
	if err := validate.NoPathTraversal("filename", "subs.srt"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	for _, v := range []string{"../etc/passwd", "a/../../b.srt", "nul\x00.srt"} {
		if err := validate.NoPathTraversal("filename", v); err == nil {
			t.Errorf("%q: expected error", v)
		}
	}
}

func TestMultiError(t *testing.T) {
	var m validate.MultiError
	m.Add(nil)
	if m.HasErrors() {
		t.Error("nil add should not record an error")
	}
	m.Add(validate.NonEmptyString("language", ""))
	m.Add(validate.IsAlphanumericSlug("content_id", "a/b"))
	if len(m.Errors) != 2 {
		t.Fatalf("error count = %d; want 2", len(m.Errors))
	}
	if m.Error() == "" {
		t.Error("summary should not be empty")
	}
}
