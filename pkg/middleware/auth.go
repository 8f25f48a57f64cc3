package middleware

import (
	"context"
	"strings"

	"pingup/backend/pkg/errors"
	"pingup/backend/pkg/jwt"
	"pingup/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key holding the verified subject
const UserIDKey = "userId"

type subjectKey struct{}

// TokenVerifier validates a bearer token and returns its claims
type TokenVerifier interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// Authenticate rejects requests without a valid bearer token. The verified
// subject is stored under UserIDKey and in the request context.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Error(errors.Unauthorized())
			c.Abort()
			return
		}

		claims, err := verifier.ValidateToken(token)
		if err != nil {
			logger.FromContext(c).Debug("Rejected bearer token", "error", err.Error())
			c.Error(errors.Unauthorized().WithCause(err))
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Request = c.Request.WithContext(WithSubject(c.Request.Context(), claims.Subject))
		c.Next()
	}
}

// BearerToken extracts the token of an "Authorization: Bearer" header value
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// CurrentUser returns the subject set by Authenticate
func CurrentUser(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// SubjectFromContext returns the subject stored by WithSubject
func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}
