package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// parsePDF walks the document page by page. The password, when given, is offered to the
// decryptor once; a wrong or missing password surfaces ErrPasswordProtected.
func parsePDF(data []byte, password string, tr *tracker) (pages []string, meta Metadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, meta = nil, Metadata{}
			err = fmt.Errorf("%w: pdf parser panic: %v", ErrCorruptDocument, r)
		}
	}()

	offered := false
	prompt := func() string {
		if offered {
			return ""
		}
		offered = true
		tr.to(StatePasswordPrompt)
		if password == "" {
			return ""
		}
		tr.to(StateLoading)
		return password
	}

	reader, err := pdf.NewReaderEncrypted(bytes.NewReader(data), int64(len(data)), prompt)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, Metadata{}, ErrPasswordProtected
		}
		return nil, Metadata{}, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	total := reader.NumPage()
	if total <= 0 {
		return nil, Metadata{}, fmt.Errorf("%w: pdf has no pages", ErrCorruptDocument)
	}
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		tr.to(StateRendering)
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, Metadata{}, fmt.Errorf("%w: page %d: %v", ErrCorruptDocument, i, err)
		}
		pages = append(pages, text)
	}

	return pages, pdfMetadata(reader), nil
}

func pdfMetadata(reader *pdf.Reader) Metadata {
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return Metadata{}
	}
	meta := Metadata{
		Title:    strings.TrimSpace(info.Key("Title").Text()),
		Author:   strings.TrimSpace(info.Key("Author").Text()),
		Keywords: splitKeywords(info.Key("Keywords").Text()),
	}
	if t, ok := parsePDFDate(info.Key("CreationDate").Text()); ok {
		meta.CreationDate = &t
	}
	return meta
}

var pdfDateLayouts = []string{"20060102150405", "200601021504", "2006010215", "20060102", "200601", "2006"}

// parsePDFDate reads the "D:YYYYMMDDHHmmSS" prefix of a PDF date string, ignoring the zone suffix.
func parsePDFDate(raw string) (time.Time, bool) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "D:")
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	s = s[:digits]
	for _, layout := range pdfDateLayouts {
		if len(s) < len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s[:len(layout)]); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func splitKeywords(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
