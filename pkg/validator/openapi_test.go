package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "pingup/backend/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schema = `
openapi: 3.0.3
info:
  title: test
  version: "1"
paths:
  /api/message/send:
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [to_user_id]
              properties:
                to_user_id:
                  type: string
                  minLength: 1
      responses:
        "200":
          description: ok
`

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	v, err := NewOpenAPIValidatorFromData([]byte(schema))
	require.NoError(t, err)

	r := gin.New()
	r.Use(apperrors.ErrorHandler(), v.Middleware())
	r.POST("/api/message/send", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/unlisted", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func send(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestValidatorAcceptsValidBody(t *testing.T) {
	w := send(newEngine(t), http.MethodPost, "/api/message/send", `{"to_user_id":"bob"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestValidatorRejectsInvalidBody(t *testing.T) {
	w := send(newEngine(t), http.MethodPost, "/api/message/send", `{"text":"hi"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, w.Body.String(), "to_user_id")
}

func TestValidatorIgnoresUnlistedRoutes(t *testing.T) {
	w := send(newEngine(t), http.MethodGet, "/unlisted", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestValidatorRejectsBrokenSchema(t *testing.T) {
	_, err := NewOpenAPIValidatorFromData([]byte("openapi: [not valid"))
	assert.Error(t, err)
}
