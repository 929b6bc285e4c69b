package extract

import (
	"errors"
	"time"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrPasswordProtected = errors.New("document is password protected")
	ErrCorruptDocument   = errors.New("corrupt document")
)

// SectionKind names a heuristically detected résumé subdivision.
type SectionKind string

const (
	SectionSummary    SectionKind = "summary"
	SectionExperience SectionKind = "experience"
	SectionEducation  SectionKind = "education"
	SectionSkills     SectionKind = "skills"
)

// SectionKinds lists every detectable kind in prompt order.
var SectionKinds = []SectionKind{SectionSummary, SectionExperience, SectionSkills, SectionEducation}

// Document is the immutable output of one extraction.
type Document struct {
	Text      string                 `json:"text"`
	PageCount int                    `json:"pageCount"`
	Sections  map[SectionKind]string `json:"sections"`
	Metadata  Metadata               `json:"metadata"`
	Format    Format                 `json:"format"`

	// Transitions is the state trace of the extraction that produced this document.
	Transitions []State `json:"-"`
}

type Metadata struct {
	Title        string     `json:"title,omitempty"`
	Author       string     `json:"author,omitempty"`
	CreationDate *time.Time `json:"creationDate,omitempty"`
	Keywords     []string   `json:"keywords,omitempty"`
}

// Section returns the detected span for kind, or "" when absent.
func (d Document) Section(kind SectionKind) string {
	if d.Sections == nil {
		return ""
	}
	return d.Sections[kind]
}
