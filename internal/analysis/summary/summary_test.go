package summary

import (
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", ""},
		{"single fragment", "Tesla opens a plant", "Tesla opens a plant"},
		{"two fragments", "First point. Second point", "First point. Second point"},
		{"trailing period", "Only one sentence.", "Only one sentence. "},
		{"three fragments", "One. Two. Three", "One. Two..."},
		{"two sentences with periods", "One. Two.", "One. Two..."},
		{"many", "A. B. C. D. E.", "A. B..."},
		{"newlines", "Line one\nstill one. Line\ntwo. Three.", "Line one still one. Line two..."},
		{"trims fragments", "   padded   .   second   ", "padded. second"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.content); got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestExtractNonEmptyForNonEmptyContent(t *testing.T) {
	for _, content := range []string{"x", "a.b", "...", " . "} {
		got := Extract(content)
		if got == "" {
			t.Errorf("Extract(%q) returned empty summary", content)
		}
		if strings.Count(got, Ellipsis) > 1 {
			t.Errorf("Extract(%q) = %q has more than one ellipsis", content, got)
		}
	}
}
