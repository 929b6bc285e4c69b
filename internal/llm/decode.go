package llm

import (
	"errors"
	"fmt"
	"strings"

	"resume-insights/internal/contract"
	"resume-insights/internal/courses"
)

// DecodeResult turns raw model output into a partial result. Markdown fences and prose around
// the JSON object are ignored; output without a JSON object is a KindMalformed failure.
func DecodeResult(provider string, content string) (contract.Partial, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return contract.Partial{}, NewError(provider, KindMalformed, ErrEmptyResponse)
	}
	object, ok := ExtractJSONObject(content)
	if !ok {
		return contract.Partial{}, NewError(provider, KindMalformed, errors.New("response contains no JSON object"))
	}
	partial, err := contract.ParsePartial([]byte(object))
	if err != nil {
		return contract.Partial{}, NewError(provider, KindMalformed, fmt.Errorf("decode result: %w", err))
	}
	return partial, nil
}

// ExtractJSONObject returns the outermost {...} span of s, skipping code fences.
func ExtractJSONObject(s string) (string, bool) {
	s = stripFences(s)
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// BackfillCourses tops up course suggestions from the catalog when the provider returned fewer
// than min, using the provider's own missing skills. Provider suggestions are kept first.
func BackfillCourses(p contract.Partial, min, max int) contract.Partial {
	if len(p.CourseSuggestions.Items) >= min {
		return p
	}
	matched := courses.Match(p.SkillsAnalysis.MissingSkills.Items, max)

	merged := append([]contract.CourseRecommendation{}, p.CourseSuggestions.Items...)
	seen := make(map[string]bool, len(merged)+len(matched))
	for _, c := range merged {
		seen[courseKey(c)] = true
	}
	for _, c := range matched {
		if len(merged) >= max {
			break
		}
		if seen[courseKey(c)] {
			continue
		}
		seen[courseKey(c)] = true
		merged = append(merged, c)
	}
	p.CourseSuggestions = contract.CoursesOf(merged)
	return p
}

func courseKey(c contract.CourseRecommendation) string {
	return strings.ToLower(c.Title) + "\x00" + strings.ToLower(c.Platform)
}

// Finish decodes content and applies the course backfill configured in s.
func Finish(provider string, content string, s Settings) (contract.Partial, error) {
	partial, err := DecodeResult(provider, content)
	if err != nil {
		return contract.Partial{}, err
	}
	return BackfillCourses(partial, s.MinCourses, s.MaxCourses), nil
}
