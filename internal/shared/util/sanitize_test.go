package util

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  error
	}{
		{in: "cv.pdf", want: "cv.pdf"},
		{in: "  Jane Doe CV.docx ", want: "Jane Doe CV.docx"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: `C:\Users\jane\resume.pdf`, want: "resume.pdf"},
		{in: "re\x00sume\n.pdf", want: "resume.pdf"},
		{in: "..", err: ErrInvalidFileName},
		{in: "dir/", err: nil, want: "dir"},
		{in: "   ", err: ErrInvalidFileName},
	}
	for _, tc := range cases {
		got, err := SanitizeFileName(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("SanitizeFileName(%q): expected %v, got %q/%v", tc.in, tc.err, got, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("SanitizeFileName(%q): expected %q, got %q/%v", tc.in, tc.want, got, err)
		}
	}
}

func TestSanitizeFileNameTruncates(t *testing.T) {
	got, err := SanitizeFileName(strings.Repeat("é", 300) + ".pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if utf8.RuneCountInString(got) != maxFileNameRunes {
		t.Fatalf("expected %d runes, got %d", maxFileNameRunes, utf8.RuneCountInString(got))
	}
}
