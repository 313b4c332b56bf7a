package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"restaurant/models"
)

type AuditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

// AuditMiddleware stores one entry per mutating request made by an
// authenticated account. It must run after AuthMiddleware.
func AuditMiddleware(recorder AuditRecorder, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			return
		}
		actor := c.GetString(AccountIDKey)
		if actor == "" {
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		entry := &models.AuditLog{
			ActorID:   actor,
			Role:      c.GetString(RoleKey),
			Action:    c.Request.Method + " " + path,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			CreatedAt: time.Now(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := recorder.Record(ctx, entry); err != nil {
			logger.Error().Err(err).Str("action", entry.Action).Msg("cannot write audit log")
		}
	}
}
