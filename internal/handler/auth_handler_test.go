package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"legal-nav-go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	token string
	err   error
}

func (f *fakeAuthService) IssueToken(clientID, clientSecret string) (string, error) {
	return f.token, f.err
}

func setupAuthHandlerRouter(svc *fakeAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/auth/token", NewAuthHandler(svc).IssueToken)
	return r
}

func TestIssueTokenEndpoint_Success(t *testing.T) {
	r := setupAuthHandlerRouter(&fakeAuthService{token: "signed.jwt.token"})

	w := postJSON(r, "/api/auth/token", gin.H{
		"client_id":     "legal-nav-admin",
		"client_secret": "s3cret",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "signed.jwt.token", resp["token"])
}

func TestIssueTokenEndpoint_InvalidCredentials(t *testing.T) {
	r := setupAuthHandlerRouter(&fakeAuthService{err: service.ErrInvalidCredentials})

	w := postJSON(r, "/api/auth/token", gin.H{
		"client_id":     "legal-nav-admin",
		"client_secret": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIssueTokenEndpoint_MissingFields(t *testing.T) {
	r := setupAuthHandlerRouter(&fakeAuthService{})

	w := postJSON(r, "/api/auth/token", gin.H{"client_id": "legal-nav-admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
