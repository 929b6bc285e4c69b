package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-insights/internal/contract"
	"resume-insights/internal/courses"
	"resume-insights/internal/extract"
	"resume-insights/internal/shared/metrics"
	"resume-insights/internal/shared/telemetry"
	"resume-insights/internal/trends"
)

// DocumentExtractor turns an uploaded file into text and sections.
type DocumentExtractor interface {
	Extract(ctx context.Context, data []byte, mimeHint string, password string) (extract.Document, error)
}

// TrendSink receives one trend point per completed analysis.
type TrendSink interface {
	Record(ctx context.Context, userID string, point contract.TrendPoint) error
}

// Service runs the analysis pipeline: extract, orchestrate, reconcile, persist, emit trend.
type Service struct {
	Extractor    DocumentExtractor
	Orchestrator *Orchestrator
	Repo         Repo
	Trends       TrendSink
	MaxCourses   int

	now func() time.Time
}

// AnalyzeInput is one uploaded document to analyze for a role.
type AnalyzeInput struct {
	UserID   string
	FileName string
	MimeHint string
	Password string
	JobRole  string
	Data     []byte
}

// Report describes how a result was produced.
type Report struct {
	Provider string
	Attempts int
	Repairs  []Repair
}

// Extract parses a document without analyzing it.
func (s *Service) Extract(ctx context.Context, data []byte, mimeHint, password string) (extract.Document, error) {
	return s.Extractor.Extract(ctx, data, mimeHint, password)
}

// RunAnalysis analyzes an extracted document and returns a schema-valid result. The only
// error besides cancellation is ErrAllProvidersExhausted (or ErrNoProviders).
func (s *Service) RunAnalysis(ctx context.Context, doc extract.Document, jobRole string) (contract.AnalysisResult, Report, error) {
	jobRole = strings.TrimSpace(jobRole)
	if jobRole == "" {
		return contract.AnalysisResult{}, Report{}, ErrJobRoleRequired
	}

	run, err := s.Orchestrator.Run(ctx, doc, jobRole)
	if err != nil {
		return contract.AnalysisResult{}, Report{Attempts: run.Attempts}, err
	}

	result, repairs := Reconcile(run.Partial)
	for _, r := range repairs {
		telemetry.Warn("analysis.repair", map[string]any{
			"request_id": RequestIDFromContext(ctx),
			"provider":   run.Provider,
			"field":      r.Field,
			"reason":     r.Reason,
			"value":      r.Value,
		})
	}
	metrics.AddRepairs(len(repairs))

	return result, Report{Provider: run.Provider, Attempts: run.Attempts, Repairs: repairs}, nil
}

// MatchCourses recommends learning resources for missing skills.
func (s *Service) MatchCourses(missingSkills []string, maxResults int) []contract.CourseRecommendation {
	if maxResults <= 0 {
		maxResults = s.maxCourses()
	}
	return courses.Match(missingSkills, maxResults)
}

// Analyze runs the full pipeline for an upload and stores the outcome. Document errors
// are returned without a record; provider exhaustion is stored as a failed analysis and
// returned together with it.
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (Analysis, error) {
	if s.Repo == nil || s.Orchestrator == nil || s.Extractor == nil {
		return Analysis{}, errors.New("analysis service is not configured")
	}
	jobRole := strings.TrimSpace(in.JobRole)
	if jobRole == "" {
		return Analysis{}, ErrJobRoleRequired
	}

	start := s.clock()
	metrics.IncAnalysisStarted()
	analysis := Analysis{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		JobRole:   jobRole,
		FileName:  in.FileName,
		CreatedAt: start.UTC(),
	}
	fields := map[string]any{
		"request_id":  RequestIDFromContext(ctx),
		"analysis_id": analysis.ID,
		"user_id":     in.UserID,
	}
	telemetry.Info("analysis.started", fields)

	doc, err := s.Extract(ctx, in.Data, in.MimeHint, in.Password)
	if err != nil {
		metrics.IncAnalysisFailed()
		fields["error"] = err.Error()
		fields["error_code"] = ErrorCode(err)
		telemetry.Warn("analysis.extract_failed", fields)
		return Analysis{}, err
	}
	analysis.Format = string(doc.Format)
	analysis.PageCount = doc.PageCount

	result, report, err := s.RunAnalysis(ctx, doc, jobRole)
	completed := s.clock().UTC()
	analysis.CompletedAt = &completed
	analysis.Provider = report.Provider
	analysis.Attempts = report.Attempts
	metrics.ObserveAnalysisDurationMs(float64(completed.Sub(start).Microseconds()) / 1000.0)

	if err != nil {
		metrics.IncAnalysisFailed()
		code := ErrorCode(err)
		msg := err.Error()
		analysis.Status = StatusFailed
		analysis.ErrorCode = &code
		analysis.ErrorMessage = &msg
		fields["error_code"] = code
		fields["error"] = msg
		telemetry.Error("analysis.failed", fields)
		if ctx.Err() == nil {
			if storeErr := s.Repo.Create(ctx, analysis); storeErr != nil {
				telemetry.Error("analysis.store_failed", map[string]any{"analysis_id": analysis.ID, "error": storeErr.Error()})
			}
		}
		return analysis, err
	}

	analysis.Status = StatusCompleted
	analysis.Result = &result
	analysis.Repairs = report.Repairs
	if err := s.Repo.Create(ctx, analysis); err != nil {
		metrics.IncAnalysisFailed()
		return Analysis{}, fmt.Errorf("store analysis: %w", err)
	}
	metrics.IncAnalysisCompleted()

	fields["provider"] = report.Provider
	fields["attempts"] = report.Attempts
	fields["repairs"] = len(report.Repairs)
	fields["overall_score"] = result.OverallScore
	telemetry.Info("analysis.completed", fields)

	if s.Trends != nil {
		point := trends.Derive(result, doc.Text, completed)
		go s.emitTrend(detached(ctx), analysis.ID, in.UserID, point)
	}

	return analysis, nil
}

// emitTrend is fire-and-forget: a failed write is logged and counted, never returned.
func (s *Service) emitTrend(ctx context.Context, analysisID, userID string, point contract.TrendPoint) {
	if err := s.Trends.Record(ctx, userID, point); err != nil {
		metrics.IncTrendPublishFailed()
		telemetry.Warn("trend.publish_failed", map[string]any{
			"request_id":  RequestIDFromContext(ctx),
			"analysis_id": analysisID,
			"user_id":     userID,
			"error":       err.Error(),
		})
	}
}

// Get returns one of the user's analyses.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (Analysis, error) {
	if analysisID == "" {
		return Analysis{}, errors.New("analysisID is required")
	}
	return s.Repo.GetByID(ctx, userID, analysisID)
}

// List returns analyses for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *Service) maxCourses() int {
	if s.MaxCourses > 0 {
		return s.MaxCourses
	}
	return courses.DefaultMaxResults
}
