package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resume-insights/internal/shared/telemetry"
)

// Extractor turns uploaded documents into text, page count, sections and metadata.
type Extractor struct {
	runtime *Runtime
}

// New returns an Extractor bound to rt.
func New(rt *Runtime) *Extractor {
	return &Extractor{runtime: rt}
}

// Extract parses data with the process-wide runtime using default options.
func Extract(ctx context.Context, data []byte, mimeHint string, password string) (Document, error) {
	rt, err := SharedRuntime(ctx, DefaultRuntimeOptions())
	if err != nil {
		return Document{}, err
	}
	return New(rt).Extract(ctx, data, mimeHint, password)
}

// Extract parses one document. mimeHint may be a MIME type or a file name and is only consulted
// when the content cannot be identified by sniffing. The parse slot acquired here is released on
// every exit path; once parsing has started it is not interrupted by ctx.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeHint string, password string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	tr := newTracker()

	if len(data) == 0 {
		tr.to(StateFailed)
		return Document{}, fmt.Errorf("%w: empty document", ErrCorruptDocument)
	}
	format, err := DetectFormat(data, mimeHint)
	if err != nil {
		tr.to(StateFailed)
		return Document{}, fmt.Errorf("%w: hint=%q", err, mimeHint)
	}
	tr.format = format

	release, err := e.runtime.acquire(ctx)
	if err != nil {
		return Document{}, err
	}
	defer release()

	tr.to(StateLoading)
	doc, err := parse(data, format, password, tr)
	if err != nil {
		tr.to(StateFailed)
		level := telemetry.Warn
		if errors.Is(err, ErrPasswordProtected) {
			level = telemetry.Info
		}
		level("extract.failed", map[string]any{
			"format": string(format),
			"bytes":  len(data),
			"error":  err.Error(),
		})
		return Document{}, err
	}
	tr.to(StateIdle)
	doc.Transitions = tr.trace()

	telemetry.Info("extract.completed", map[string]any{
		"format":     string(format),
		"bytes":      len(data),
		"page_count": doc.PageCount,
		"sections":   len(doc.Sections),
		"chars":      len(doc.Text),
	})
	return doc, nil
}

func parse(data []byte, format Format, password string, tr *tracker) (Document, error) {
	var (
		pages     []string
		meta      Metadata
		pageCount int
		err       error
	)
	switch format {
	case FormatPDF:
		pages, meta, err = parsePDF(data, password, tr)
		pageCount = len(pages)
	case FormatDOCX:
		pages, meta, pageCount, err = parseDOCX(data, tr)
	case FormatPlain:
		tr.to(StateRendering)
		pages, pageCount = []string{string(data)}, 1
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return Document{}, err
	}
	return assemble(pages, pageCount, meta, format)
}

func assemble(pages []string, pageCount int, meta Metadata, format Format) (Document, error) {
	sections := make(map[SectionKind]string)
	var text strings.Builder
	for _, raw := range pages {
		page := collapseWhitespace(raw)
		if page == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(page)
		detectSections(page, sections)
	}
	if text.Len() == 0 {
		return Document{}, fmt.Errorf("%w: no extractable text", ErrCorruptDocument)
	}
	return Document{
		Text:      text.String(),
		PageCount: pageCount,
		Sections:  sections,
		Metadata:  meta,
		Format:    format,
	}, nil
}
