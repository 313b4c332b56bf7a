package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant/models"
	"restaurant/utils"
)

type recordedAudit struct {
	entries []models.AuditLog
}

func (r *recordedAudit) Record(_ context.Context, entry *models.AuditLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func TestAuditMiddlewareRecordsMutations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwt := utils.NewJWT("secret", time.Hour)
	token, err := jwt.GenerateToken("m1", "manager", "user")
	require.NoError(t, err)

	rec := &recordedAudit{}
	r := gin.New()
	g := r.Group("/api", AuthMiddleware(jwt), AuditMiddleware(rec, zerolog.Nop()))
	g.GET("/menu", func(c *gin.Context) { c.Status(http.StatusOK) })
	g.DELETE("/menu/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		path := "/api/menu"
		if method == http.MethodDelete {
			path += "/42"
		}
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, rec.entries, 1)
	entry := rec.entries[0]
	assert.Equal(t, "m1", entry.ActorID)
	assert.Equal(t, "manager", entry.Role)
	assert.Equal(t, "DELETE /api/menu/:id", entry.Action)
	assert.Equal(t, "/api/menu/42", entry.Path)
	assert.Equal(t, http.StatusNoContent, entry.Status)
}
