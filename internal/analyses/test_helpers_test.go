package analyses

import (
	"context"
	"errors"
	"sync"
	"time"

	"resume-insights/internal/contract"
	"resume-insights/internal/extract"
	"resume-insights/internal/llm"
)

// scriptedProvider returns its replies in order, repeating the last one.
type scriptedProvider struct {
	name    string
	replies []scriptedReply

	mu    sync.Mutex
	calls int
}

type scriptedReply struct {
	partial contract.Partial
	err     error
	delay   time.Duration
}

func (p *scriptedProvider) Name() string {
	return p.name
}

func (p *scriptedProvider) Analyze(ctx context.Context, doc extract.Document, jobRole string) (contract.Partial, error) {
	p.mu.Lock()
	idx := p.calls
	p.calls++
	p.mu.Unlock()

	if idx >= len(p.replies) {
		idx = len(p.replies) - 1
	}
	r := p.replies[idx]
	if r.delay > 0 {
		// Ignores ctx on purpose: the orchestrator must stop waiting on its own.
		time.Sleep(r.delay)
	}
	return r.partial, r.err
}

func (p *scriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func okReply(overall float64) scriptedReply {
	return scriptedReply{partial: validResult(overall).Partial()}
}

func failReply(name string, kind llm.Kind) scriptedReply {
	return scriptedReply{err: llm.NewError(name, kind, errFake)}
}

var errFake = errors.New("fake provider failure")

func validResult(overall float64) contract.AnalysisResult {
	return contract.AnalysisResult{
		ATSCompatibilityScore: 81,
		KeywordMatches: contract.KeywordMatches{
			Matched:    []string{"Go", "PostgreSQL"},
			Missing:    []string{"Kubernetes"},
			TotalScore: 74,
		},
		ContentStructure: contract.ContentStructure{
			HasSummary:      true,
			HasSkills:       true,
			HasExperience:   true,
			HasEducation:    false,
			FormattingScore: 88,
			Suggestions:     []string{"Add an education section"},
		},
		SkillsAnalysis: contract.SkillsAnalysis{
			RelevantSkills: []string{"Go"},
			MissingSkills:  []string{"Kubernetes"},
			SkillsScore:    70,
		},
		ExperienceRelevance: contract.ExperienceRelevance{
			RelevanceScore: 77,
			Feedback:       []string{"Strong backend focus"},
		},
		ImprovementRecommendations: []string{"Quantify the impact of the billing migration"},
		WritingStyleAnalysis: contract.WritingStyleAnalysis{
			Clarity:        82,
			ActionVerbs:    true,
			Quantification: false,
			Suggestions:    []string{},
		},
		CourseSuggestions: []contract.CourseRecommendation{{
			Title:      "Kubernetes Basics",
			Platform:   "kubernetes.io",
			Link:       "https://kubernetes.io/docs/tutorials/kubernetes-basics/",
			Price:      contract.PriceFree,
			SourceType: contract.SourceTutorial,
			SkillMatch: "Kubernetes",
		}},
		OverallScore: overall,
	}
}

func noSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	var mu sync.Mutex
	return func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		*delays = append(*delays, d)
		mu.Unlock()
		return ctx.Err()
	}
}
