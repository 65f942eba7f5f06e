package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/response"
)

func newMiddlewareEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), RequestLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), Timeout(50*time.Millisecond))
	r.GET("/ping", func(c *gin.Context) {
		_, hasDeadline := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{
			"request_id":   c.GetString(response.RequestIDKey),
			"has_deadline": hasDeadline,
		})
	})
	return r
}

func TestRequestIDGenerated(t *testing.T) {
	r := newMiddlewareEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Contains(t, w.Body.String(), id)
	assert.Contains(t, w.Body.String(), `"has_deadline":true`)
}

func TestRequestIDHonoured(t *testing.T) {
	r := newMiddlewareEngine()
	incoming := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))
}

func TestRequestIDRejectsGarbage(t *testing.T) {
	r := newMiddlewareEngine()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.NotEqual(t, "<script>", w.Header().Get(RequestIDHeader))
}

func TestAllowedOrigins(t *testing.T) {
	assert.Equal(t, []string{"https://a.example", "https://b.example"},
		allowedOrigins(Config{IsProduction: true, ProdOrigins: " https://a.example, ,https://b.example"}))
	assert.NotEmpty(t, allowedOrigins(Config{}))
}
