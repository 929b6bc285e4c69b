package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"code.sajari.com/docconv"
)

// parseDOCX converts the document body with docconv and reads the page count that Word
// stores in docProps/app.xml. DOCX has no page layout of its own, so the body is one page.
func parseDOCX(data []byte, tr *tracker) ([]string, Metadata, int, error) {
	text, props, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return nil, Metadata{}, 0, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	tr.to(StateRendering)

	pageCount := docxPageCount(data)
	if pageCount < 1 {
		pageCount = 1
	}
	return []string{text}, docxMetadata(props), pageCount, nil
}

func docxMetadata(props map[string]string) Metadata {
	meta := Metadata{
		Title:    strings.TrimSpace(props["title"]),
		Author:   strings.TrimSpace(props["creator"]),
		Keywords: splitKeywords(props["keywords"]),
	}
	if created := strings.TrimSpace(props["created"]); created != "" {
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			t = t.UTC()
			meta.CreationDate = &t
		}
	}
	return meta
}

type appProperties struct {
	Pages string `xml:"Pages"`
}

func docxPageCount(data []byte) int {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") != "docProps/app.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return 0
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return 0
		}
		var props appProperties
		if err := xml.Unmarshal(raw, &props); err != nil {
			return 0
		}
		n, err := strconv.Atoi(strings.TrimSpace(props.Pages))
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}
