package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"legal-nav-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter(jwtManager *token.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.DELETE("/api/documents", ServiceAuth(jwtManager), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"client_id": c.GetString("client_id")})
	})
	return r
}

func TestServiceAuth_MissingHeader(t *testing.T) {
	r := setupAuthRouter(token.NewJWTManager("secret", 1))

	req := httptest.NewRequest(http.MethodDelete, "/api/documents", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServiceAuth_MalformedHeader(t *testing.T) {
	r := setupAuthRouter(token.NewJWTManager("secret", 1))

	req := httptest.NewRequest(http.MethodDelete, "/api/documents", nil)
	req.Header.Set("Authorization", "Basic abc123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServiceAuth_InvalidToken(t *testing.T) {
	r := setupAuthRouter(token.NewJWTManager("secret", 1))

	req := httptest.NewRequest(http.MethodDelete, "/api/documents", nil)
	req.Header.Set("Authorization", "Bearer not.a.valid.token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServiceAuth_ValidToken(t *testing.T) {
	m := token.NewJWTManager("secret", 1)
	r := setupAuthRouter(m)

	tokenString, err := m.GenerateToken("legal-nav-admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/documents", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "legal-nav-admin")
}

func TestServiceAuth_TokenSignedWithOtherSecret(t *testing.T) {
	other := token.NewJWTManager("other-secret", 1)
	r := setupAuthRouter(token.NewJWTManager("secret", 1))

	tokenString, err := other.GenerateToken("legal-nav-admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/documents", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
