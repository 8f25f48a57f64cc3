package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "pingup/backend/pkg/errors"
	"pingup/backend/pkg/jwt"
	"pingup/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.SetGlobal(logger.Discard())
}

type provisionerFunc func(ctx context.Context, subject string) error

func (f provisionerFunc) EnsureUser(ctx context.Context, subject string) error { return f(ctx, subject) }

func newJWT(t *testing.T) *jwt.Service {
	t.Helper()
	svc, err := jwt.NewService("test-secret", "", "")
	require.NoError(t, err)
	return svc
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(apperrors.ErrorHandler())
	r.GET("/protected", append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "user": CurrentUser(c), "ctx": SubjectFromContext(c.Request.Context())})
	})...)
	return r
}

func do(r http.Handler, header string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestAuthenticate(t *testing.T) {
	svc := newJWT(t)
	token, err := svc.GenerateToken("user_42")
	require.NoError(t, err)
	r := newEngine(Authenticate(svc))

	t.Run("valid token", func(t *testing.T) {
		w, body := do(r, "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user_42", body["user"])
		assert.Equal(t, "user_42", body["ctx"])
	})

	for name, header := range map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic " + token,
		"garbage token":  "Bearer not-a-jwt",
		"bare bearer":    "Bearer",
	} {
		t.Run(name, func(t *testing.T) {
			w, body := do(r, header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "Unauthorized", body["message"])
		})
	}
}

func TestEnsureUserSkippedWhenUnauthenticated(t *testing.T) {
	called := false
	p := provisionerFunc(func(ctx context.Context, subject string) error {
		called = true
		return nil
	})
	r := newEngine(Authenticate(newJWT(t)), EnsureUser(p))

	w, _ := do(r, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestEnsureUser(t *testing.T) {
	svc := newJWT(t)
	token, _ := svc.GenerateToken("user_42")

	t.Run("provisioned", func(t *testing.T) {
		var got string
		p := provisionerFunc(func(ctx context.Context, subject string) error {
			got = subject
			return nil
		})
		w, _ := do(newEngine(Authenticate(svc), EnsureUser(p)), "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user_42", got)
	})

	t.Run("failure hides detail", func(t *testing.T) {
		p := provisionerFunc(func(ctx context.Context, subject string) error {
			return errors.New("pq: password authentication failed")
		})
		w, body := do(newEngine(Authenticate(svc), EnsureUser(p)), "Bearer "+token)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "User sync failed", body["message"])
		assert.NotContains(t, w.Body.String(), "password")
	})
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Equal(t, "", BearerToken("Token abc"))
	assert.Equal(t, "", BearerToken(""))
}

func TestRateLimiterPerUser(t *testing.T) {
	rl := NewRateLimiter(logger.Discard(), RateLimiterOptions{Limit: 0.001, Burst: 2, KeyFunc: ByUser})
	defer rl.Close()

	r := gin.New()
	r.Use(apperrors.ErrorHandler())
	r.GET("/protected", func(c *gin.Context) {
		c.Set(UserIDKey, c.GetHeader("X-User"))
		c.Next()
	}, rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	hit := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, hit("alice"))
	assert.Equal(t, http.StatusNoContent, hit("alice"))
	assert.Equal(t, http.StatusTooManyRequests, hit("alice"))
	assert.Equal(t, http.StatusNoContent, hit("bob"))
}
