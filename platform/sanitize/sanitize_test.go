package sanitize

import "testing"

func TestStripHTML(t *testing.T) {
	tests := map[string]string{
		"  plain  ":                     "plain",
		"<b>bold</b> text":              "bold text",
		"&lt;script&gt;x&lt;/script&gt;": "x",
		"fish &amp; chips":              "fish & chips",
	}
	for in, want := range tests {
		if got := StripHTML(in); got != want {
			t.Errorf("StripHTML(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTextPtrBlankBecomesNil(t *testing.T) {
	blank := "<p> </p>"
	if TextPtr(&blank) != nil {
		t.Fatalf("expected nil for markup-only input")
	}
	if TextPtr(nil) != nil {
		t.Fatalf("expected nil for nil input")
	}
}
