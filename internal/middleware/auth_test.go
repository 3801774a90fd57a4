package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(testSecret))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"tenant_id": GetTenantID(c),
			"user_id":   GetUserID(c),
			"role":      GetUserRole(c),
		})
	})
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuth_ValidBearerToken(t *testing.T) {
	token, err := GenerateToken(testSecret, 7, 3, "ana@norte.test", "admin", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	newAuthRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tenant_id":7,"user_id":3,"role":"admin"}`, w.Body.String())
}

func TestAuth_TokenQueryParam(t *testing.T) {
	token, err := GenerateToken(testSecret, 7, 3, "ana@norte.test", "admin", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	newAuthRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+token, nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_Rejections(t *testing.T) {
	expired, err := GenerateToken(testSecret, 7, 3, "ana@norte.test", "admin", -time.Minute)
	require.NoError(t, err)
	otherSecret, err := GenerateToken("other", 7, 3, "ana@norte.test", "admin", time.Hour)
	require.NoError(t, err)
	noTenant, err := GenerateToken(testSecret, 0, 3, "ana@norte.test", "admin", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", "Authorization header is required"},
		{"wrong scheme", "Token " + expired, "Invalid authorization header format"},
		{"expired", "Bearer " + expired, "token has expired"},
		{"bad signature", "Bearer " + otherSecret, "invalid token"},
		{"no tenant", "Bearer " + noTenant, "token is not bound to a tenant"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			newAuthRouter().ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	employee, err := GenerateToken(testSecret, 7, 4, "luis@norte.test", "employee", time.Hour)
	require.NoError(t, err)
	admin, err := GenerateToken(testSecret, 7, 3, "ana@norte.test", "admin", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+employee)
	newAuthRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	newAuthRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
