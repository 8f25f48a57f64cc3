package errors

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"pingup/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler returns a middleware that catches and formats application errors
// as {success:false, message, code}
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		appErr := FromError(c.Errors[0].Err)

		log := logger.FromContext(c)
		args := []any{
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"status_code", appErr.StatusCode,
			"error_code", appErr.Code,
			"message", appErr.Message,
		}
		if appErr.cause != nil {
			args = append(args, "cause", appErr.cause.Error())
		}
		if appErr.StatusCode >= http.StatusInternalServerError {
			log.Error("Request error", args...)
		} else {
			log.Warn("Request rejected", args...)
		}

		if c.Writer.Written() {
			return
		}

		body := gin.H{
			"success": false,
			"message": appErr.Message,
			"code":    appErr.Code,
		}
		if appErr.Details != nil {
			body["details"] = appErr.Details
		}
		c.AbortWithStatusJSON(appErr.StatusCode, body)
	}
}

// RecoveryWithLogger returns a middleware that recovers from any panics
// and logs the error with the request-scoped logger
func RecoveryWithLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())

				logger.FromContext(c).Error("Panic recovered",
					"error", fmt.Sprintf("%v", r),
					"stack", stack,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "The server encountered an unexpected error",
					"code":    "SERVER_ERROR",
				})
			}
		}()

		c.Next()
	}
}
