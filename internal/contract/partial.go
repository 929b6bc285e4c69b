package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrNotObject is returned by ParsePartial when the payload is not a JSON object.
var ErrNotObject = errors.New("analysis payload is not a JSON object")

// Partial is a provider result as decoded, before reconciliation. Decoding never fails on
// individual fields: a field with the wrong JSON type is left invalid for the repairer.
type Partial struct {
	ATSCompatibilityScore      Number                     `json:"atsCompatibilityScore"`
	KeywordMatches             PartialKeywordMatches      `json:"keywordMatches"`
	ContentStructure           PartialContentStructure    `json:"contentStructure"`
	SkillsAnalysis             PartialSkillsAnalysis      `json:"skillsAnalysis"`
	ExperienceRelevance        PartialExperienceRelevance `json:"experienceRelevance"`
	ImprovementRecommendations StringList                 `json:"improvementRecommendations"`
	WritingStyleAnalysis       PartialWritingStyle        `json:"writingStyleAnalysis"`
	CourseSuggestions          CourseList                 `json:"courseSuggestions"`
	OverallScore               Number                     `json:"overallScore"`
}

type PartialKeywordMatches struct {
	Present    bool       `json:"-"`
	Matched    StringList `json:"matched"`
	Missing    StringList `json:"missing"`
	TotalScore Number     `json:"totalScore"`
}

type PartialContentStructure struct {
	Present         bool       `json:"-"`
	HasSummary      Flag       `json:"hasSummary"`
	HasSkills       Flag       `json:"hasSkills"`
	HasExperience   Flag       `json:"hasExperience"`
	HasEducation    Flag       `json:"hasEducation"`
	FormattingScore Number     `json:"formattingScore"`
	Suggestions     StringList `json:"suggestions"`
}

type PartialSkillsAnalysis struct {
	Present        bool       `json:"-"`
	RelevantSkills StringList `json:"relevantSkills"`
	MissingSkills  StringList `json:"missingSkills"`
	SkillsScore    Number     `json:"skillsScore"`
}

type PartialExperienceRelevance struct {
	Present        bool       `json:"-"`
	RelevanceScore Number     `json:"relevanceScore"`
	Feedback       StringList `json:"feedback"`
}

type PartialWritingStyle struct {
	Present        bool       `json:"-"`
	Clarity        Number     `json:"clarity"`
	ActionVerbs    Flag       `json:"actionVerbs"`
	Quantification Flag       `json:"quantification"`
	Suggestions    StringList `json:"suggestions"`
}

// ParsePartial decodes a provider payload. Only a payload that is not a JSON object is an error.
func ParsePartial(data []byte) (Partial, error) {
	var out Partial
	if !isObject(data) {
		return out, ErrNotObject
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return Partial{}, err
	}
	return out, nil
}

func (p *PartialKeywordMatches) UnmarshalJSON(data []byte) error {
	type plain PartialKeywordMatches
	var v plain
	if !decodeObject(data, &v) {
		*p = PartialKeywordMatches{}
		return nil
	}
	*p = PartialKeywordMatches(v)
	p.Present = true
	return nil
}

func (p *PartialContentStructure) UnmarshalJSON(data []byte) error {
	type plain PartialContentStructure
	var v plain
	if !decodeObject(data, &v) {
		*p = PartialContentStructure{}
		return nil
	}
	*p = PartialContentStructure(v)
	p.Present = true
	return nil
}

func (p *PartialSkillsAnalysis) UnmarshalJSON(data []byte) error {
	type plain PartialSkillsAnalysis
	var v plain
	if !decodeObject(data, &v) {
		*p = PartialSkillsAnalysis{}
		return nil
	}
	*p = PartialSkillsAnalysis(v)
	p.Present = true
	return nil
}

func (p *PartialExperienceRelevance) UnmarshalJSON(data []byte) error {
	type plain PartialExperienceRelevance
	var v plain
	if !decodeObject(data, &v) {
		*p = PartialExperienceRelevance{}
		return nil
	}
	*p = PartialExperienceRelevance(v)
	p.Present = true
	return nil
}

func (p *PartialWritingStyle) UnmarshalJSON(data []byte) error {
	type plain PartialWritingStyle
	var v plain
	if !decodeObject(data, &v) {
		*p = PartialWritingStyle{}
		return nil
	}
	*p = PartialWritingStyle(v)
	p.Present = true
	return nil
}

// Number is a leniently decoded numeric field. Numeric strings ("85", "85%") are accepted;
// anything else, NaN and infinities leave Valid false.
type Number struct {
	Value float64
	Valid bool
}

// NumberOf returns a valid Number.
func NumberOf(v float64) Number {
	return Number{Value: v, Valid: true}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	if isNull(data) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		if isFinite(f) {
			*n = NumberOf(f)
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if parsed, err := strconv.ParseFloat(s, 64); err == nil && isFinite(parsed) {
		*n = NumberOf(parsed)
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Flag is a leniently decoded boolean field.
type Flag struct {
	Value bool
	Valid bool
}

// FlagOf returns a valid Flag.
func FlagOf(v bool) Flag {
	return Flag{Value: v, Valid: true}
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	*f = Flag{}
	if isNull(data) {
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlagOf(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes":
		*f = FlagOf(true)
	case "false", "no":
		*f = FlagOf(false)
	}
	return nil
}

func (f Flag) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// StringList is a leniently decoded string array. Non-string elements are dropped.
type StringList struct {
	Items []string
	Valid bool
}

// ListOf returns a valid StringList holding a copy of items.
func ListOf(items []string) StringList {
	return StringList{Items: append([]string{}, items...), Valid: true}
}

func (l *StringList) UnmarshalJSON(data []byte) error {
	*l = StringList{}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil
	}
	items := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			items = append(items, s)
		}
	}
	*l = StringList{Items: items, Valid: true}
	return nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if !l.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(l.Items)
}

// CourseList is a leniently decoded array of course recommendations. Entries that are
// not objects or carry no title are dropped.
type CourseList struct {
	Items []CourseRecommendation
	Valid bool
}

// CoursesOf returns a valid CourseList holding a copy of items.
func CoursesOf(items []CourseRecommendation) CourseList {
	return CourseList{Items: append([]CourseRecommendation{}, items...), Valid: true}
}

func (l *CourseList) UnmarshalJSON(data []byte) error {
	*l = CourseList{}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil
	}
	items := make([]CourseRecommendation, 0, len(raw))
	for _, item := range raw {
		var c courseFields
		if !decodeObject(item, &c) {
			continue
		}
		rec := c.recommendation()
		if rec.Title == "" {
			continue
		}
		items = append(items, rec)
	}
	*l = CourseList{Items: items, Valid: true}
	return nil
}

func (l CourseList) MarshalJSON() ([]byte, error) {
	if !l.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(l.Items)
}

// courseFields tolerates non-string values in any course attribute.
type courseFields struct {
	Title      lenientString `json:"title"`
	Platform   lenientString `json:"platform"`
	Link       lenientString `json:"link"`
	Level      lenientString `json:"level"`
	Price      lenientString `json:"price"`
	Duration   lenientString `json:"duration"`
	SourceType lenientString `json:"sourceType"`
	SkillMatch lenientString `json:"skillMatch"`
}

func (c courseFields) recommendation() CourseRecommendation {
	return CourseRecommendation{
		Title:      string(c.Title),
		Platform:   string(c.Platform),
		Link:       string(c.Link),
		Level:      string(c.Level),
		Price:      string(c.Price),
		Duration:   string(c.Duration),
		SourceType: SourceType(c.SourceType),
		SkillMatch: string(c.SkillMatch),
	}
}

type lenientString string

func (s *lenientString) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		*s = ""
		return nil
	}
	*s = lenientString(strings.TrimSpace(v))
	return nil
}

func decodeObject(data []byte, v any) bool {
	if !isObject(data) {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func isObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
