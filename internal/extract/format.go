package extract

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format is a supported input document type.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatDOCX  Format = "docx"
	FormatPlain Format = "text"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeZip  = "application/zip"
	mimeText = "text/plain"
)

// DetectFormat sniffs data and falls back to the caller's hint (a MIME type or file name)
// only when the content itself is ambiguous.
func DetectFormat(data []byte, hint string) (Format, error) {
	sniffed := mimetype.Detect(data)
	switch {
	case sniffed.Is(mimePDF):
		return FormatPDF, nil
	case sniffed.Is(mimeDOCX):
		return FormatDOCX, nil
	case sniffed.Is(mimeZip):
		if mapOOXMLFromZip(data) == mimeDOCX {
			return FormatDOCX, nil
		}
		return "", ErrUnsupportedFormat
	case isTextFamily(sniffed):
		return FormatPlain, nil
	}

	switch normalizeHint(hint) {
	case mimePDF:
		return FormatPDF, nil
	case mimeDOCX:
		return FormatDOCX, nil
	}
	return "", ErrUnsupportedFormat
}

// isTextFamily reports whether m is text/plain or one of its more specific subtypes
// (JSON, CSV, HTML and the like), all of which are readable as plain text.
func isTextFamily(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is(mimeText) {
			return true
		}
	}
	return false
}

func normalizeHint(hint string) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(hint, ";")[0]))
	switch filepath.Ext(clean) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDOCX
	}
	return clean
}

// mapOOXMLFromZip inspects the archive layout of a generic zip payload.
func mapOOXMLFromZip(data []byte) string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		switch strings.ReplaceAll(f.Name, "\\", "/") {
		case "word/document.xml":
			return mimeDOCX
		case "xl/workbook.xml":
			return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		case "ppt/presentation.xml":
			return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
		}
	}
	return ""
}
