package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/storecore/backend/internal/infrastructure/auth"
	"github.com/storecore/backend/internal/interfaces/http/middleware"
)

// stubAuth injects claims the way the JWT middleware would, so handler
// tests run without minting real tokens
func stubAuth(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := &auth.Claims{
			UserID:   userID.String(),
			Username: "test-staff",
			Role:     role,
		}
		c.Set(middleware.JWTClaimsKey, claims)
		c.Set(middleware.JWTUserIDKey, claims.UserID)
		c.Set(middleware.JWTUsernameKey, claims.Username)
		c.Set(middleware.JWTRoleKey, claims.Role)
		c.Next()
	}
}

// doJSON performs a JSON request against the router and decodes the
// response envelope
func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var envelope map[string]interface{}
	if w.Body.Len() > 0 && w.Code != http.StatusNoContent {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w, envelope
}

func errorCode(envelope map[string]interface{}) string {
	errInfo, ok := envelope["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errInfo["code"].(string)
	return code
}
