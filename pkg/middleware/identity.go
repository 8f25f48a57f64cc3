package middleware

import (
	"context"

	"pingup/backend/pkg/errors"
	"pingup/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Provisioner makes sure a local record exists for a verified subject
type Provisioner interface {
	EnsureUser(ctx context.Context, subject string) error
}

// EnsureUser runs after Authenticate. Any provisioning failure ends the
// request with a generic sync failure.
func EnsureUser(p Provisioner) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := CurrentUser(c)
		if subject == "" {
			c.Error(errors.Unauthorized())
			c.Abort()
			return
		}

		if err := p.EnsureUser(c.Request.Context(), subject); err != nil {
			logger.FromContext(c).LogError(err, "User sync failed", "user_id", subject)
			c.Error(errors.SyncFailure(err))
			c.Abort()
			return
		}
		c.Next()
	}
}
