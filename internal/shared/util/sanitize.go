package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
)

const maxFileNameRunes = 255

var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName keeps the base name of an uploaded file, dropping directory parts,
// control characters and traversal segments. The result is at most 255 runes.
func SanitizeFileName(name string) (string, error) {
	s := strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	s = path.Base(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if s == "" || s == "." || s == ".." || s == "/" {
		return "", ErrInvalidFileName
	}
	if runes := []rune(s); len(runes) > maxFileNameRunes {
		s = string(runes[:maxFileNameRunes])
	}
	return s, nil
}
