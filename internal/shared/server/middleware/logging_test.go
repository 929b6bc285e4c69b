package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"resume-insights/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, observed := observer.New(zapcore.InfoLevel)
	prev := telemetry.SetLogger(zap.New(core))
	t.Cleanup(func() { telemetry.SetLogger(prev) })

	router := gin.New()
	router.Use(RequestID(), Identity(), Logging())
	router.POST("/api/v1/analyses", func(c *gin.Context) {
		c.Set("analysisId", "analysis-1")
		c.Set("provider", "openai")
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", nil)
	req.Header.Set("X-User-Id", "user-7")
	req.Header.Set("X-Request-Id", "req-abc")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := observed.FilterMessage("request.complete").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	for _, key := range []string{"request_id", "user_id", "analysis_id", "provider", "duration_ms", "status", "route"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if fields["request_id"] != "req-abc" || fields["user_id"] != "user-7" {
		t.Fatalf("unexpected identity fields: %v", fields)
	}
	if fields["route"] != "/api/v1/analyses" {
		t.Fatalf("unexpected route: %v", fields["route"])
	}
}

func TestLoggingSkipsPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, observed := observer.New(zapcore.DebugLevel)
	prev := telemetry.SetLogger(zap.New(core))
	t.Cleanup(func() { telemetry.SetLogger(prev) })

	router := gin.New()
	router.Use(Logging())
	router.OPTIONS("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodOptions, "/x", nil))

	if observed.Len() != 0 {
		t.Fatalf("expected no logs for OPTIONS, got %d", observed.Len())
	}
}
