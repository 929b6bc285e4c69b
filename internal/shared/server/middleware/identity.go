package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-insights/internal/shared/server/respond"
)

const (
	userIDKey = "userId"

	// AnonymousUser scopes requests that carry no X-User-Id header.
	AnonymousUser = "anonymous"

	maxUserIDLength = 128
)

// Identity reads the caller's id from X-User-Id. Authentication happens upstream;
// this only scopes records and trend streams.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if id == "" {
			id = AnonymousUser
		}
		if !validUserID(id) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid X-User-Id header", []map[string]string{
				{"field": "X-User-Id", "issue": "invalid"},
			})
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// UserIDFromContext returns the id stored by Identity.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Get(userIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

func validUserID(id string) bool {
	if len(id) > maxUserIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("-_.:@", r):
		default:
			return false
		}
	}
	return true
}
