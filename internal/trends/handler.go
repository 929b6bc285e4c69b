package trends

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resume-insights/internal/shared/server/middleware"
	"resume-insights/internal/shared/server/respond"
	"resume-insights/internal/shared/telemetry"
)

const heartbeatInterval = 25 * time.Second

// Handler exposes the trend window and its live stream.
type Handler struct {
	Svc       *Service
	Heartbeat time.Duration
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, Heartbeat: heartbeatInterval}
}

// RegisterRoutes attaches trend routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/trends", h.recent)
	rg.GET("/trends/stream", h.stream)
}

func (h *Handler) recent(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be a non-negative integer", nil)
			return
		}
		limit = parsed
	}

	points, err := h.Svc.Recent(c.Request.Context(), middleware.UserIDFromContext(c), limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load trends", nil)
		return
	}
	respond.OK(c, gin.H{"points": points})
}

func (h *Handler) stream(c *gin.Context) {
	if h.Svc.Registry == nil {
		respond.Error(c, http.StatusServiceUnavailable, "unavailable", "live trends are not enabled", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	points, dispose := h.Svc.Registry.Subscribe(userID, 16)
	defer dispose()

	setSSEHeaders(c.Writer)
	c.Status(http.StatusOK)
	c.SSEvent("ready", gin.H{"userId": userID})
	c.Writer.Flush()

	interval := h.Heartbeat
	if interval <= 0 {
		interval = heartbeatInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	telemetry.Debug("trends.stream.opened", map[string]any{"user_id": userID, "request_id": middleware.RequestIDFromContext(c)})
	done := c.Request.Context().Done()
	for {
		select {
		case <-done:
			telemetry.Debug("trends.stream.closed", map[string]any{"user_id": userID})
			return
		case point, ok := <-points:
			if !ok {
				return
			}
			c.SSEvent("point", point)
			c.Writer.Flush()
		case now := <-ticker.C:
			c.SSEvent("ping", now.UTC().Format(time.RFC3339Nano))
			c.Writer.Flush()
		}
	}
}

func setSSEHeaders(w http.ResponseWriter) {
	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
}
