package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/taskflow-api/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *services.JWTService {
	return services.NewJWTService("test-secret-key", 15*time.Minute, 24*time.Hour)
}

func generateTestTokens(t *testing.T, jwtSvc *services.JWTService, userID uuid.UUID, email string) *services.TokenPair {
	t.Helper()
	pair, err := jwtSvc.GenerateTokenPair(userID, email)
	require.NoError(t, err)
	return pair
}

func okHandler(c *drift.Context) {
	_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// serveProtected mounts handler behind Auth at /protected and performs one GET.
func serveProtected(validator AccessTokenValidator, handler drift.HandlerFunc, target, authorization string) *httptest.ResponseRecorder {
	app := drift.New()
	app.Use(Auth(validator))
	app.Get("/protected", handler)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func TestAuth_Rejections(t *testing.T) {
	jwtSvc := newTestJWTService()

	tests := []struct {
		name          string
		authorization string
		wantMessage   string
	}{
		{"missing header", "", "missing authorization header"},
		{"wrong scheme", "Token some-token", "invalid authorization header format"},
		{"bearer only", "Bearer", "invalid authorization header format"},
		{"garbage token", "Bearer invalid-token", "invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveProtected(jwtSvc, okHandler, "/protected", tt.authorization)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMessage)
		})
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	jwtSvc := services.NewJWTService("test-secret-key", time.Millisecond, 24*time.Hour)
	pair := generateTestTokens(t, jwtSvc, uuid.New(), "test@example.com")
	time.Sleep(10 * time.Millisecond)

	rec := serveProtected(jwtSvc, okHandler, "/protected", "Bearer "+pair.AccessToken)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")
}

func TestAuth_WrongSecret(t *testing.T) {
	issuer := services.NewJWTService("secret-1", 15*time.Minute, 24*time.Hour)
	verifier := services.NewJWTService("secret-2", 15*time.Minute, 24*time.Hour)
	pair := generateTestTokens(t, issuer, uuid.New(), "test@example.com")

	rec := serveProtected(verifier, okHandler, "/protected", "Bearer "+pair.AccessToken)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_RefreshTokenNotAccepted(t *testing.T) {
	jwtSvc := newTestJWTService()
	pair := generateTestTokens(t, jwtSvc, uuid.New(), "test@example.com")

	rec := serveProtected(jwtSvc, okHandler, "/protected", "Bearer "+pair.RefreshToken)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ValidToken(t *testing.T) {
	jwtSvc := newTestJWTService()
	userID := uuid.New()
	email := "test@example.com"
	pair := generateTestTokens(t, jwtSvc, userID, email)

	var extractedUserID uuid.UUID
	var extractedEmail string
	handler := func(c *drift.Context) {
		extractedUserID = GetUserID(c)
		extractedEmail = GetUserEmail(c)
		okHandler(c)
	}

	rec := serveProtected(jwtSvc, handler, "/protected", "Bearer "+pair.AccessToken)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, extractedUserID)
	assert.Equal(t, email, extractedEmail)
}

func TestAuth_BearerCaseInsensitive(t *testing.T) {
	jwtSvc := newTestJWTService()
	pair := generateTestTokens(t, jwtSvc, uuid.New(), "test@example.com")
	for _, bearer := range []string{"bearer", "BEARER", "BeArEr"} {
		t.Run(bearer, func(t *testing.T) {
			rec := serveProtected(jwtSvc, okHandler, "/protected", bearer+" "+pair.AccessToken)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestAuth_QueryToken(t *testing.T) {
	jwtSvc := newTestJWTService()
	userID := uuid.New()
	pair := generateTestTokens(t, jwtSvc, userID, "test@example.com")

	var extractedUserID uuid.UUID
	handler := func(c *drift.Context) {
		extractedUserID = GetUserID(c)
		okHandler(c)
	}

	rec := serveProtected(jwtSvc, handler, "/protected?"+QueryTokenParam+"="+pair.AccessToken, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, extractedUserID)
}

func TestGetUserID_NotSet(t *testing.T) {
	app := drift.New()

	var extractedUserID uuid.UUID
	var extractedEmail string
	app.Get("/test", func(c *drift.Context) {
		extractedUserID = GetUserID(c)
		extractedEmail = GetUserEmail(c)
		_ = c.JSON(http.StatusOK, nil)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	app.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, uuid.Nil, extractedUserID)
	assert.Equal(t, "", extractedEmail)
}
