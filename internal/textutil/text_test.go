package textutil

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"cut", "abcdef", 3, "abc"},
		{"multibyte", "안녕하세요", 2, "안녕"},
		{"no limit", "abc", 0, "abc"},
		{"empty", "", 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.limit); got != tt.want {
				t.Fatalf("Truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := CollapseWhitespace("  hello\n\t world  "); got != "hello world" {
		t.Fatalf("unexpected %q", got)
	}
	if got := CollapseWhitespace(" \n "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName(` a/b:c*d?"e<f>|g `); got != "a-b-c-defg" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeFileName("   "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
