package errors

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("middleware: %w", Unauthorized())
	assert.Equal(t, http.StatusUnauthorized, FromError(wrapped).StatusCode)

	plain := FromError(errors.New("db exploded"))
	assert.Equal(t, http.StatusInternalServerError, plain.StatusCode)
	assert.Equal(t, CodeInternal, plain.Code)
	assert.Equal(t, "An unexpected error occurred", plain.Message)
}

func TestGenerationFailureSurfacesProviderMessage(t *testing.T) {
	err := GenerationFailure(errors.New("quota exceeded"))

	assert.Equal(t, "quota exceeded", err.Message)
	assert.True(t, Is(err, &AppError{Code: CodeGenerationFailed}))
	assert.EqualError(t, errors.Unwrap(err), "quota exceeded")
}

func TestSyncFailureHidesCause(t *testing.T) {
	err := SyncFailure(errors.New("identity provider timeout"))

	assert.Equal(t, "User sync failed", err.Message)
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
}

func TestErrorHandlerRendersAppError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(), RecoveryWithLogger())
	r.GET("/fail", func(c *gin.Context) {
		c.Error(NewBadRequestError(CodeBadRequest, "Invalid request").WithDetails("to_user_id is required"))
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Invalid request","code":"BAD_REQUEST","details":"to_user_id is required"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
