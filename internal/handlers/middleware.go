package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"movierental/internal/config"
	"movierental/internal/models"
)

const requestIDKey = "request_id"

// RequestLogger tags every request with a generated id and logs it after the
// handler chain finishes.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := uuid.NewString()
		c.Set(requestIDKey, reqID)
		c.Writer.Header().Set("X-Request-ID", reqID)

		c.Next()

		log.Info("http",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"req_id", reqID,
			"ip", c.ClientIP(),
		)
	}
}

// RequireRole validates Basic-auth credentials against the configured
// profiles and rejects callers whose role does not cover the required one.
// A Manager is authorized for every Employee endpoint.
func RequireRole(profiles []config.AuthProfile, required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="movierental"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		for _, p := range profiles {
			if subtle.ConstantTimeCompare([]byte(p.Username), []byte(username)) == 1 &&
				subtle.ConstantTimeCompare([]byte(p.Password), []byte(password)) == 1 {
				if !roleCovers(p.Role, required) {
					c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
					return
				}
				c.Set("role", p.Role)
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
}

func roleCovers(have, required models.Role) bool {
	if have == models.RoleManager {
		return true
	}
	return have == required
}
