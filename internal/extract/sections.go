package extract

import (
	"regexp"
	"strings"
)

var sectionHeading = regexp.MustCompile(`(?i)\b(professional summary|summary|objective|profile|about me|` +
	`work experience|professional experience|experience|work history|employment history|` +
	`education|academic background|` +
	`technical skills|core competencies|skills|qualifications)\b`)

var sectionKeywords = map[string]SectionKind{
	"professional summary":    SectionSummary,
	"summary":                 SectionSummary,
	"objective":               SectionSummary,
	"profile":                 SectionSummary,
	"about me":                SectionSummary,
	"work experience":         SectionExperience,
	"professional experience": SectionExperience,
	"experience":              SectionExperience,
	"work history":            SectionExperience,
	"employment history":      SectionExperience,
	"education":               SectionEducation,
	"academic background":     SectionEducation,
	"technical skills":        SectionSkills,
	"core competencies":       SectionSkills,
	"skills":                  SectionSkills,
	"qualifications":          SectionSkills,
}

// detectSections scans one page and records, per kind, the span from a section keyword up to
// the next keyword or end of page. Later matches overwrite earlier ones.
func detectSections(page string, into map[SectionKind]string) {
	matches := sectionHeading.FindAllStringSubmatchIndex(page, -1)
	for i, m := range matches {
		kind, ok := sectionKeywords[strings.ToLower(page[m[2]:m[3]])]
		if !ok {
			continue
		}
		end := len(page)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		if span := strings.TrimSpace(page[m[0]:end]); span != "" {
			into[kind] = span
		}
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
