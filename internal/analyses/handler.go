package analyses

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-insights/internal/contract"
	"resume-insights/internal/extract"
	"resume-insights/internal/shared/server/middleware"
	"resume-insights/internal/shared/server/respond"
	"resume-insights/internal/shared/util"
)

// DefaultMaxUploadBytes caps uploaded documents when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

var errUploadTooLarge = errors.New("upload too large")

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches pipeline routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/extract", h.extract)
	rg.POST("/analyses", h.createAnalysis)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.POST("/courses/match", h.matchCourses)
}

type upload struct {
	name     string
	mimeHint string
	data     []byte
}

func (h *Handler) readUpload(c *gin.Context) (upload, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return upload{}, fmt.Errorf("file is required: %w", err)
	}
	if fh.Size > h.MaxUploadBytes {
		return upload{}, errUploadTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return upload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.MaxUploadBytes+1))
	if err != nil {
		return upload{}, err
	}
	if int64(len(data)) > h.MaxUploadBytes {
		return upload{}, errUploadTooLarge
	}

	name, err := util.SanitizeFileName(fh.Filename)
	if err != nil {
		name = ""
	}
	hint := fh.Header.Get("Content-Type")
	if hint == "" || hint == "application/octet-stream" {
		hint = name
	}
	return upload{name: name, mimeHint: hint, data: data}, nil
}

func (h *Handler) uploadError(c *gin.Context, err error) {
	if errors.Is(err, errUploadTooLarge) {
		respond.Error(c, http.StatusRequestEntityTooLarge, "upload_too_large",
			fmt.Sprintf("file exceeds %d bytes", h.MaxUploadBytes), nil)
		return
	}
	respond.Error(c, http.StatusBadRequest, "validation_error", "multipart field \"file\" is required", []map[string]string{
		{"field": "file", "issue": "required"},
	})
}

func (h *Handler) extract(c *gin.Context) {
	up, err := h.readUpload(c)
	if err != nil {
		h.uploadError(c, err)
		return
	}
	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	doc, err := h.Svc.Extract(ctx, up.data, up.mimeHint, c.PostForm("password"))
	if err != nil {
		writePipelineError(c, err, nil)
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) createAnalysis(c *gin.Context) {
	jobRole := strings.TrimSpace(c.PostForm("jobRole"))
	if jobRole == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "jobRole is required", []map[string]string{
			{"field": "jobRole", "issue": "required"},
		})
		return
	}
	up, err := h.readUpload(c)
	if err != nil {
		h.uploadError(c, err)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	analysis, err := h.Svc.Analyze(ctx, AnalyzeInput{
		UserID:   middleware.UserIDFromContext(c),
		FileName: up.name,
		MimeHint: up.mimeHint,
		Password: c.PostForm("password"),
		JobRole:  jobRole,
		Data:     up.data,
	})
	if analysis.ID != "" {
		c.Set("analysisId", analysis.ID)
		c.Set("provider", analysis.Provider)
	}
	if err != nil {
		var details any
		if analysis.ID != "" {
			details = gin.H{"analysisId": analysis.ID}
		}
		writePipelineError(c, err, details)
		return
	}

	respond.Created(c, analysis)
}

func (h *Handler) getAnalysis(c *gin.Context) {
	analysisID := c.Param("id")
	analysis, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), analysisID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}
	respond.OK(c, analysis)
}

func (h *Handler) listAnalyses(c *gin.Context) {
	limit := queryInt(c, "limit", defaultListLimit)
	offset := queryInt(c, "offset", 0)

	analyses, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}

	resp := make([]gin.H, 0, len(analyses))
	for _, a := range analyses {
		item := gin.H{
			"analysisId": a.ID,
			"jobRole":    a.JobRole,
			"fileName":   a.FileName,
			"status":     a.Status,
			"createdAt":  a.CreatedAt,
		}
		if a.Status == StatusCompleted && a.Result != nil {
			item["overallScore"] = a.Result.OverallScore
			item["atsCompatibilityScore"] = a.Result.ATSCompatibilityScore
		}
		if a.ErrorCode != nil {
			item["errorCode"] = *a.ErrorCode
		}
		resp = append(resp, item)
	}
	respond.OK(c, resp)
}

type matchRequest struct {
	MissingSkills []string `json:"missingSkills"`
	MaxResults    int      `json:"maxResults"`
}

func (h *Handler) matchCourses(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}
	if req.MaxResults < 0 || req.MaxResults > 50 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "maxResults must be between 0 and 50", []map[string]string{
			{"field": "maxResults", "issue": "out_of_range"},
		})
		return
	}
	courses := h.Svc.MatchCourses(req.MissingSkills, req.MaxResults)
	respond.OK(c, gin.H{"courses": nonNilCourses(courses)})
}

func writePipelineError(c *gin.Context, err error, details any) {
	switch {
	case errors.Is(err, ErrJobRoleRequired):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), details)
	case errors.Is(err, extract.ErrUnsupportedFormat):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_format", "document type is not supported", details)
	case errors.Is(err, extract.ErrPasswordProtected):
		respond.Error(c, http.StatusUnprocessableEntity, "password_protected", "document is password protected; supply the correct password", details)
	case errors.Is(err, extract.ErrCorruptDocument):
		respond.Error(c, http.StatusUnprocessableEntity, "corrupt_document", "document could not be read", details)
	case errors.Is(err, ErrAllProvidersExhausted), errors.Is(err, ErrNoProviders):
		respond.Error(c, http.StatusBadGateway, "providers_exhausted", "analysis is temporarily unavailable, try again later", details)
	case c.Request.Context().Err() != nil:
		respond.Error(c, 499, "client_closed_request", "request cancelled", details)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "analysis failed", details)
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return parsed
}

func nonNilCourses(items []contract.CourseRecommendation) []contract.CourseRecommendation {
	if items == nil {
		return []contract.CourseRecommendation{}
	}
	return items
}
