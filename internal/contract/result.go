package contract

// AnalysisResult is the provider-independent analysis schema returned to callers.
//
// Every numeric field is a finite number in [0,100] and every slice is non-nil once
// the value has passed through analyses.Reconcile.
type AnalysisResult struct {
	ATSCompatibilityScore      float64                `json:"atsCompatibilityScore"`
	KeywordMatches             KeywordMatches         `json:"keywordMatches"`
	ContentStructure           ContentStructure       `json:"contentStructure"`
	SkillsAnalysis             SkillsAnalysis         `json:"skillsAnalysis"`
	ExperienceRelevance        ExperienceRelevance    `json:"experienceRelevance"`
	ImprovementRecommendations []string               `json:"improvementRecommendations"`
	WritingStyleAnalysis       WritingStyleAnalysis   `json:"writingStyleAnalysis"`
	CourseSuggestions          []CourseRecommendation `json:"courseSuggestions"`
	OverallScore               float64                `json:"overallScore"`
}

type KeywordMatches struct {
	Matched    []string `json:"matched"`
	Missing    []string `json:"missing"`
	TotalScore float64  `json:"totalScore"`
}

type ContentStructure struct {
	HasSummary      bool     `json:"hasSummary"`
	HasSkills       bool     `json:"hasSkills"`
	HasExperience   bool     `json:"hasExperience"`
	HasEducation    bool     `json:"hasEducation"`
	FormattingScore float64  `json:"formattingScore"`
	Suggestions     []string `json:"suggestions"`
}

type SkillsAnalysis struct {
	RelevantSkills []string `json:"relevantSkills"`
	MissingSkills  []string `json:"missingSkills"`
	SkillsScore    float64  `json:"skillsScore"`
}

type ExperienceRelevance struct {
	RelevanceScore float64  `json:"relevanceScore"`
	Feedback       []string `json:"feedback"`
}

type WritingStyleAnalysis struct {
	Clarity        float64  `json:"clarity"`
	ActionVerbs    bool     `json:"actionVerbs"`
	Quantification bool     `json:"quantification"`
	Suggestions    []string `json:"suggestions"`
}

// SourceType classifies the format of a learning resource.
type SourceType string

const (
	SourceYouTube       SourceType = "YouTube"
	SourceOnlineCourse  SourceType = "OnlineCourse"
	SourceCertification SourceType = "Certification"
	SourceTutorial      SourceType = "Tutorial"
)

// Price tiers used by the course catalog.
const (
	PriceFree     = "Free"
	PriceFreemium = "Freemium"
	PricePaid     = "Paid"
)

// CourseRecommendation is a learning resource suggested for a missing skill.
type CourseRecommendation struct {
	Title      string     `json:"title"`
	Platform   string     `json:"platform"`
	Link       string     `json:"link"`
	Level      string     `json:"level,omitempty"`
	Price      string     `json:"price,omitempty"`
	Duration   string     `json:"duration,omitempty"`
	SourceType SourceType `json:"sourceType,omitempty"`
	SkillMatch string     `json:"skillMatch,omitempty"`
}

// Partial converts a complete result back into its partial form with every field present.
func (r AnalysisResult) Partial() Partial {
	return Partial{
		ATSCompatibilityScore: NumberOf(r.ATSCompatibilityScore),
		KeywordMatches: PartialKeywordMatches{
			Present:    true,
			Matched:    ListOf(r.KeywordMatches.Matched),
			Missing:    ListOf(r.KeywordMatches.Missing),
			TotalScore: NumberOf(r.KeywordMatches.TotalScore),
		},
		ContentStructure: PartialContentStructure{
			Present:         true,
			HasSummary:      FlagOf(r.ContentStructure.HasSummary),
			HasSkills:       FlagOf(r.ContentStructure.HasSkills),
			HasExperience:   FlagOf(r.ContentStructure.HasExperience),
			HasEducation:    FlagOf(r.ContentStructure.HasEducation),
			FormattingScore: NumberOf(r.ContentStructure.FormattingScore),
			Suggestions:     ListOf(r.ContentStructure.Suggestions),
		},
		SkillsAnalysis: PartialSkillsAnalysis{
			Present:        true,
			RelevantSkills: ListOf(r.SkillsAnalysis.RelevantSkills),
			MissingSkills:  ListOf(r.SkillsAnalysis.MissingSkills),
			SkillsScore:    NumberOf(r.SkillsAnalysis.SkillsScore),
		},
		ExperienceRelevance: PartialExperienceRelevance{
			Present:        true,
			RelevanceScore: NumberOf(r.ExperienceRelevance.RelevanceScore),
			Feedback:       ListOf(r.ExperienceRelevance.Feedback),
		},
		ImprovementRecommendations: ListOf(r.ImprovementRecommendations),
		WritingStyleAnalysis: PartialWritingStyle{
			Present:        true,
			Clarity:        NumberOf(r.WritingStyleAnalysis.Clarity),
			ActionVerbs:    FlagOf(r.WritingStyleAnalysis.ActionVerbs),
			Quantification: FlagOf(r.WritingStyleAnalysis.Quantification),
			Suggestions:    ListOf(r.WritingStyleAnalysis.Suggestions),
		},
		CourseSuggestions: CoursesOf(r.CourseSuggestions),
		OverallScore:      NumberOf(r.OverallScore),
	}
}
