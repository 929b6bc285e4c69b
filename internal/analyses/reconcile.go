package analyses

import (
	"math"

	"resume-insights/internal/contract"
	"resume-insights/internal/courses"
)

// Defaults substituted for numeric fields a provider left missing or unreadable.
const (
	DefaultATSScore        = 70.0
	DefaultKeywordScore    = 50.0
	DefaultFormattingScore = 70.0
	DefaultSkillsScore     = 50.0
	DefaultRelevanceScore  = 50.0
	DefaultClarity         = 70.0
	DefaultOverallScore    = 65.0
)

// PlaceholderRecommendation stands in for an empty recommendation list.
const PlaceholderRecommendation = "Tailor your résumé to the target role: mirror the key skills and terms from the job posting in your summary and experience."

// Repair reasons.
const (
	RepairMissing     = "missing"
	RepairOutOfRange  = "out_of_range"
	RepairPlaceholder = "placeholder"
)

// Repair records one substitution made by Reconcile.
type Repair struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
	Value  any    `json:"value"`
}

// Reconcile turns a partial provider result into a complete one. Fields that are present
// and well formed are kept as they are; only missing or invalid fields are replaced, and
// every replacement is reported. Reconcile never fails and does not modify p.
func Reconcile(p contract.Partial) (contract.AnalysisResult, []Repair) {
	r := &repairer{}

	out := contract.AnalysisResult{
		ATSCompatibilityScore: r.score("atsCompatibilityScore", p.ATSCompatibilityScore, DefaultATSScore),
		KeywordMatches: contract.KeywordMatches{
			Matched:    r.list("keywordMatches.matched", p.KeywordMatches.Matched),
			Missing:    r.list("keywordMatches.missing", p.KeywordMatches.Missing),
			TotalScore: r.score("keywordMatches.totalScore", p.KeywordMatches.TotalScore, DefaultKeywordScore),
		},
		ContentStructure: contract.ContentStructure{
			HasSummary:      r.flag("contentStructure.hasSummary", p.ContentStructure.HasSummary),
			HasSkills:       r.flag("contentStructure.hasSkills", p.ContentStructure.HasSkills),
			HasExperience:   r.flag("contentStructure.hasExperience", p.ContentStructure.HasExperience),
			HasEducation:    r.flag("contentStructure.hasEducation", p.ContentStructure.HasEducation),
			FormattingScore: r.score("contentStructure.formattingScore", p.ContentStructure.FormattingScore, DefaultFormattingScore),
			Suggestions:     r.list("contentStructure.suggestions", p.ContentStructure.Suggestions),
		},
		SkillsAnalysis: contract.SkillsAnalysis{
			RelevantSkills: r.list("skillsAnalysis.relevantSkills", p.SkillsAnalysis.RelevantSkills),
			MissingSkills:  r.list("skillsAnalysis.missingSkills", p.SkillsAnalysis.MissingSkills),
			SkillsScore:    r.score("skillsAnalysis.skillsScore", p.SkillsAnalysis.SkillsScore, DefaultSkillsScore),
		},
		ExperienceRelevance: contract.ExperienceRelevance{
			RelevanceScore: r.score("experienceRelevance.relevanceScore", p.ExperienceRelevance.RelevanceScore, DefaultRelevanceScore),
			Feedback:       r.list("experienceRelevance.feedback", p.ExperienceRelevance.Feedback),
		},
		WritingStyleAnalysis: contract.WritingStyleAnalysis{
			Clarity:        r.score("writingStyleAnalysis.clarity", p.WritingStyleAnalysis.Clarity, DefaultClarity),
			ActionVerbs:    r.flag("writingStyleAnalysis.actionVerbs", p.WritingStyleAnalysis.ActionVerbs),
			Quantification: r.flag("writingStyleAnalysis.quantification", p.WritingStyleAnalysis.Quantification),
			Suggestions:    r.list("writingStyleAnalysis.suggestions", p.WritingStyleAnalysis.Suggestions),
		},
		OverallScore: r.score("overallScore", p.OverallScore, DefaultOverallScore),
	}

	out.ImprovementRecommendations = r.list("improvementRecommendations", p.ImprovementRecommendations)
	if len(out.ImprovementRecommendations) == 0 {
		out.ImprovementRecommendations = []string{PlaceholderRecommendation}
		r.add("improvementRecommendations", RepairPlaceholder, PlaceholderRecommendation)
	}

	out.CourseSuggestions = r.courses(p.CourseSuggestions, out.SkillsAnalysis.MissingSkills)

	return out, r.repairs
}

type repairer struct {
	repairs []Repair
}

func (r *repairer) add(field, reason string, value any) {
	r.repairs = append(r.repairs, Repair{Field: field, Reason: reason, Value: value})
}

func (r *repairer) score(field string, n contract.Number, def float64) float64 {
	if !n.Valid || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		r.add(field, RepairMissing, def)
		return def
	}
	clamped := clampScore(n.Value)
	if clamped != n.Value {
		r.add(field, RepairOutOfRange, clamped)
	}
	return clamped
}

func (r *repairer) flag(field string, f contract.Flag) bool {
	if !f.Valid {
		r.add(field, RepairMissing, false)
		return false
	}
	return f.Value
}

func (r *repairer) list(field string, l contract.StringList) []string {
	if !l.Valid {
		r.add(field, RepairMissing, []string{})
		return []string{}
	}
	return append([]string{}, l.Items...)
}

func (r *repairer) courses(l contract.CourseList, missingSkills []string) []contract.CourseRecommendation {
	if l.Valid && len(l.Items) > 0 {
		return append([]contract.CourseRecommendation{}, l.Items...)
	}
	matched := courses.Match(missingSkills, courses.DefaultMaxResults)
	reason := RepairMissing
	if l.Valid {
		reason = RepairPlaceholder
	}
	r.add("courseSuggestions", reason, len(matched))
	return matched
}

func clampScore(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
