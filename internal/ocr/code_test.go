package ocr

import "testing"

func TestExtractNumberCode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"three digits", "042", "042"},
		{"three digits in text", "Tag 105 ready", "105"},
		{"first three-digit group wins", "12 345 678", "345"},
		{"single digit padded", "7", "007"},
		{"two digits padded", "No. 12", "012"},
		{"short group before long run", "5 123456", "005"},
		{"digits glued to letters", "A1B2", "012"},
		{"long run truncated", "123456", "123"},
		{"long run glued", "ID98765X", "987"},
		{"surrounding whitespace", "  \n 9 \t", "009"},
		{"no digits", "abc", ""},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractNumberCode(tt.text); got != tt.want {
				t.Errorf("ExtractNumberCode(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
