package analyses

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-insights/internal/extract"
	"resume-insights/internal/llm"
	"resume-insights/internal/shared/server/middleware"
)

const sampleResume = `Jane Doe
Summary
Backend engineer building Go and PostgreSQL services.
Experience
Led the billing migration to Go.
Skills
Go, PostgreSQL, Redis`

func setupRouter(t *testing.T, providers ...llm.Provider) (*gin.Engine, *MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rt, err := extract.SharedRuntime(context.Background(), extract.DefaultRuntimeOptions())
	if err != nil {
		t.Fatalf("runtime: %v", err)
	}
	repo := NewMemoryRepo()
	var delays []time.Duration
	o := NewOrchestrator(providers, RetryPolicy{MaxAttempts: 1})
	o.sleep = noSleep(&delays)
	svc := &Service{Extractor: extract.New(rt), Orchestrator: o, Repo: repo}

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Identity())
	NewHandler(svc, 1<<20).RegisterRoutes(router.Group("/api/v1"))
	return router, repo
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return body, w.FormDataContentType()
}

func doRequest(router http.Handler, method, path, contentType string, body *bytes.Buffer, userID string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

type errorEnvelope struct {
	Error struct {
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decodeErrorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error body %q: %v", resp.Body.String(), err)
	}
	return env.Error.Code
}

func TestCreateAnalysisReturnsResult(t *testing.T) {
	router, repo := setupRouter(t, &scriptedProvider{name: "openai", replies: []scriptedReply{okReply(79)}})

	body, ct := multipartBody(t, map[string]string{"jobRole": "Backend Engineer"}, "cv.txt", []byte(sampleResume))
	resp := doRequest(router, http.MethodPost, "/api/v1/analyses", ct, body, "user-1")
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var got Analysis
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID == "" || got.Status != StatusCompleted || got.Result == nil || got.Result.OverallScore != 79 {
		t.Fatalf("unexpected analysis %+v", got)
	}
	if got.Format != string(extract.FormatPlain) {
		t.Fatalf("expected plain text format, got %q", got.Format)
	}
	if _, err := repo.GetByID(context.Background(), "user-1", got.ID); err != nil {
		t.Fatalf("expected analysis stored for user-1: %v", err)
	}
}

func TestCreateAnalysisValidation(t *testing.T) {
	router, _ := setupRouter(t, &scriptedProvider{name: "p", replies: []scriptedReply{okReply(50)}})

	cases := []struct {
		name     string
		fields   map[string]string
		fileName string
		data     []byte
		status   int
		code     string
	}{
		{name: "missing job role", fields: map[string]string{}, fileName: "cv.txt", data: []byte(sampleResume), status: http.StatusBadRequest, code: "validation_error"},
		{name: "missing file", fields: map[string]string{"jobRole": "SRE"}, status: http.StatusBadRequest, code: "validation_error"},
		{name: "image upload", fields: map[string]string{"jobRole": "SRE"}, fileName: "cv.png", data: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), status: http.StatusUnsupportedMediaType, code: "unsupported_format"},
		{name: "too large", fields: map[string]string{"jobRole": "SRE"}, fileName: "cv.txt", data: bytes.Repeat([]byte("a"), 1<<20+1), status: http.StatusRequestEntityTooLarge, code: "upload_too_large"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, ct := multipartBody(t, tc.fields, tc.fileName, tc.data)
			resp := doRequest(router, http.MethodPost, "/api/v1/analyses", ct, body, "user-1")
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, resp.Code, resp.Body.String())
			}
			if code := decodeErrorCode(t, resp); code != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, code)
			}
		})
	}
}

func TestCreateAnalysisProvidersExhausted(t *testing.T) {
	router, repo := setupRouter(t, &scriptedProvider{name: "p", replies: []scriptedReply{failReply("p", llm.KindUnavailable)}})

	body, ct := multipartBody(t, map[string]string{"jobRole": "SRE"}, "cv.txt", []byte(sampleResume))
	resp := doRequest(router, http.MethodPost, "/api/v1/analyses", ct, body, "user-1")
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", resp.Code, resp.Body.String())
	}
	var env errorEnvelope
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Code != "providers_exhausted" {
		t.Fatalf("unexpected code %q", env.Error.Code)
	}
	var details struct {
		AnalysisID string `json:"analysisId"`
	}
	if err := json.Unmarshal(env.Error.Details, &details); err != nil || details.AnalysisID == "" {
		t.Fatalf("expected analysisId in details, got %s", env.Error.Details)
	}
	stored, err := repo.GetByID(context.Background(), "user-1", details.AnalysisID)
	if err != nil || stored.Status != StatusFailed {
		t.Fatalf("expected failed analysis stored, got %+v err=%v", stored, err)
	}
}

func TestExtractReturnsDocument(t *testing.T) {
	router, _ := setupRouter(t)

	body, ct := multipartBody(t, nil, "cv.txt", []byte(sampleResume))
	resp := doRequest(router, http.MethodPost, "/api/v1/extract", ct, body, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var doc extract.Document
	if err := json.Unmarshal(resp.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.PageCount != 1 || !strings.Contains(doc.Text, "billing migration") {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestGetAndListAreScopedToUser(t *testing.T) {
	router, repo := setupRouter(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	result := validResult(66)
	for i, id := range []string{"a-1", "a-2"} {
		if err := repo.Create(ctx, Analysis{
			ID:        id,
			UserID:    "user-1",
			JobRole:   "SRE",
			Status:    StatusCompleted,
			Result:    &result,
			CreatedAt: created.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	resp := doRequest(router, http.MethodGet, "/api/v1/analyses/a-1", "", nil, "user-1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	resp = doRequest(router, http.MethodGet, "/api/v1/analyses/a-1", "", nil, "user-2")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another user, got %d", resp.Code)
	}

	resp = doRequest(router, http.MethodGet, "/api/v1/analyses?limit=10", "", nil, "user-1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var items []struct {
		AnalysisID   string  `json:"analysisId"`
		OverallScore float64 `json:"overallScore"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 || items[0].AnalysisID != "a-2" || items[0].OverallScore != 66 {
		t.Fatalf("unexpected list %+v", items)
	}
}

func TestMatchCoursesEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	resp := doRequest(router, http.MethodPost, "/api/v1/courses/match", "application/json",
		bytes.NewBufferString(`{"missingSkills": ["Docker"], "maxResults": 2}`), "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Courses []struct {
			SkillMatch string `json:"skillMatch"`
		} `json:"courses"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Courses) != 2 || body.Courses[0].SkillMatch != "Docker" {
		t.Fatalf("unexpected courses %+v", body.Courses)
	}

	resp = doRequest(router, http.MethodPost, "/api/v1/courses/match", "application/json",
		bytes.NewBufferString(`{"missingSkills": [], "maxResults": 500}`), "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for maxResults out of range, got %d", resp.Code)
	}
}
