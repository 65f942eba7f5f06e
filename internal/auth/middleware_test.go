package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(m *JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/swap", AuthRequired(m), RequirePermission(ActionSwapEngineers), func(c *gin.Context) {
		p, _ := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "role": p.Role})
	})
	return r
}

func TestAuthRequiredAndPermission(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	r := newTestEngine(m)

	staffToken, err := m.GenerateAccessToken(Principal{ID: "staff-1", Name: "Sam", Role: RoleStaff})
	require.NoError(t, err)
	clientToken, err := m.GenerateAccessToken(Principal{ID: "client-1", Name: "Cleo", Role: RoleClient})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"lacks capability", "Bearer " + clientToken, http.StatusForbidden},
		{"allowed", "Bearer " + staffToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/swap", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptPasswordHasherWithCost(4)
	hash, err := h.Hash("correct horse")
	require.NoError(t, err)

	assert.NoError(t, h.Compare(hash, "correct horse"))
	assert.ErrorIs(t, h.Compare(hash, "battery staple"), ErrPasswordMismatch)

	assert.False(t, h.NeedsRehash(hash))
	assert.True(t, NewBcryptPasswordHasherWithCost(5).NeedsRehash(hash))
	assert.True(t, h.NeedsRehash("not-a-bcrypt-hash"))
}
