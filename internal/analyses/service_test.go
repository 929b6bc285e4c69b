package analyses

import (
	"context"
	"errors"
	"testing"
	"time"

	"resume-insights/internal/contract"
	"resume-insights/internal/extract"
	"resume-insights/internal/llm"
)

type fakeExtractor struct {
	doc   extract.Document
	err   error
	calls int
}

func (f *fakeExtractor) Extract(ctx context.Context, data []byte, mimeHint string, password string) (extract.Document, error) {
	f.calls++
	return f.doc, f.err
}

type recordedPoint struct {
	userID string
	point  contract.TrendPoint
}

type chanSink struct {
	points chan recordedPoint
	err    error
}

func (s *chanSink) Record(ctx context.Context, userID string, point contract.TrendPoint) error {
	s.points <- recordedPoint{userID: userID, point: point}
	return s.err
}

func newTestService(providers []llm.Provider, ext *fakeExtractor, sink *chanSink) (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	var delays []time.Duration
	o := NewOrchestrator(providers, RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond})
	o.sleep = noSleep(&delays)
	svc := &Service{Extractor: ext, Orchestrator: o, Repo: repo}
	if sink != nil {
		svc.Trends = sink
	}
	return svc, repo
}

func TestAnalyzeCompletesAndEmitsTrend(t *testing.T) {
	ext := &fakeExtractor{doc: extract.Document{Text: "Go developer shipping Go and PostgreSQL services", PageCount: 1, Format: "pdf"}}
	sink := &chanSink{points: make(chan recordedPoint, 1)}
	provider := &scriptedProvider{name: "openai", replies: []scriptedReply{okReply(84)}}
	svc, repo := newTestService([]llm.Provider{provider}, ext, sink)

	analysis, err := svc.Analyze(context.Background(), AnalyzeInput{UserID: "user-1", FileName: "cv.pdf", JobRole: " Backend Engineer ", Data: []byte("%PDF")})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if analysis.Status != StatusCompleted || analysis.Result == nil || analysis.Result.OverallScore != 84 {
		t.Fatalf("unexpected analysis %+v", analysis)
	}
	if analysis.JobRole != "Backend Engineer" || analysis.Provider != "openai" || analysis.Attempts != 1 {
		t.Fatalf("unexpected metadata %+v", analysis)
	}
	if analysis.Format != "pdf" || analysis.PageCount != 1 {
		t.Fatalf("expected document details recorded, got %+v", analysis)
	}

	stored, err := repo.GetByID(context.Background(), "user-1", analysis.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != StatusCompleted {
		t.Fatalf("expected stored completed analysis, got %s", stored.Status)
	}

	select {
	case got := <-sink.points:
		if got.userID != "user-1" || got.point.ATSScore != 81 || got.point.Readability != 82 {
			t.Fatalf("unexpected trend point %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a trend point")
	}
}

func TestAnalyzeExhaustedStoresFailure(t *testing.T) {
	ext := &fakeExtractor{doc: extract.Document{Text: "resume", PageCount: 1}}
	sink := &chanSink{points: make(chan recordedPoint, 1)}
	a := &scriptedProvider{name: "a", replies: []scriptedReply{failReply("a", llm.KindTimeout)}}
	b := &scriptedProvider{name: "b", replies: []scriptedReply{failReply("b", llm.KindAuth)}}
	svc, repo := newTestService([]llm.Provider{a, b}, ext, sink)

	analysis, err := svc.Analyze(context.Background(), AnalyzeInput{UserID: "user-1", JobRole: "SRE", Data: []byte("x")})
	if !errors.Is(err, ErrAllProvidersExhausted) {
		t.Fatalf("expected ErrAllProvidersExhausted, got %v", err)
	}
	if analysis.Status != StatusFailed || analysis.ErrorCode == nil || *analysis.ErrorCode != ErrorCodeProvidersExhausted {
		t.Fatalf("unexpected failed analysis %+v", analysis)
	}
	if analysis.Result != nil {
		t.Fatalf("failed analysis must not carry a result")
	}
	if analysis.Attempts != 3 {
		t.Fatalf("expected 2 attempts on a and 1 on b, got %d", analysis.Attempts)
	}
	stored, err := repo.GetByID(context.Background(), "user-1", analysis.ID)
	if err != nil {
		t.Fatalf("expected failed analysis stored: %v", err)
	}
	if stored.Attempts != 3 || stored.Status != StatusFailed {
		t.Fatalf("expected stored failure with 3 attempts, got status=%s attempts=%d", stored.Status, stored.Attempts)
	}
	select {
	case p := <-sink.points:
		t.Fatalf("no trend point expected on failure, got %+v", p)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAnalyzeDocumentErrorsAreNotStored(t *testing.T) {
	ext := &fakeExtractor{err: extract.ErrPasswordProtected}
	provider := &scriptedProvider{name: "p", replies: []scriptedReply{okReply(50)}}
	svc, repo := newTestService([]llm.Provider{provider}, ext, nil)

	_, err := svc.Analyze(context.Background(), AnalyzeInput{UserID: "u", JobRole: "PM", Data: []byte("x")})
	if !errors.Is(err, extract.ErrPasswordProtected) {
		t.Fatalf("expected ErrPasswordProtected, got %v", err)
	}
	if provider.Calls() != 0 {
		t.Fatalf("providers must not be called for unreadable documents")
	}
	list, _ := repo.ListByUser(context.Background(), "u", 0, 0)
	if len(list) != 0 {
		t.Fatalf("expected nothing stored, got %d", len(list))
	}
}

func TestAnalyzeRequiresJobRole(t *testing.T) {
	ext := &fakeExtractor{}
	svc, _ := newTestService([]llm.Provider{&scriptedProvider{name: "p", replies: []scriptedReply{okReply(1)}}}, ext, nil)
	if _, err := svc.Analyze(context.Background(), AnalyzeInput{UserID: "u", JobRole: "  "}); !errors.Is(err, ErrJobRoleRequired) {
		t.Fatalf("expected ErrJobRoleRequired, got %v", err)
	}
	if ext.calls != 0 {
		t.Fatalf("extractor must not run without a job role")
	}
}

func TestRunAnalysisReconcilesProviderOutput(t *testing.T) {
	partial, err := contract.ParsePartial([]byte(`{"overallScore": "91", "skillsAnalysis": {"missingSkills": ["Docker"]}}`))
	if err != nil {
		t.Fatalf("ParsePartial: %v", err)
	}
	provider := &scriptedProvider{name: "p", replies: []scriptedReply{{partial: partial}}}
	svc, _ := newTestService([]llm.Provider{provider}, &fakeExtractor{}, nil)

	result, report, err := svc.RunAnalysis(context.Background(), extract.Document{Text: "x", PageCount: 1}, "DevOps")
	if err != nil {
		t.Fatalf("RunAnalysis: %v", err)
	}
	if result.OverallScore != 91 || result.ATSCompatibilityScore != DefaultATSScore {
		t.Fatalf("unexpected scores %+v", result)
	}
	if len(report.Repairs) == 0 || report.Provider != "p" {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(result.CourseSuggestions) == 0 || result.CourseSuggestions[0].SkillMatch != "Docker" {
		t.Fatalf("expected Docker courses first, got %+v", result.CourseSuggestions)
	}
}

func TestMatchCoursesDefaultsMax(t *testing.T) {
	svc := &Service{MaxCourses: 4}
	got := svc.MatchCourses([]string{"Python", "SQL", "Docker", "AWS"}, 0)
	if len(got) != 4 {
		t.Fatalf("expected configured default of 4, got %d", len(got))
	}
}
