package errors

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"customer-feedback-hub/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler logs the first error attached to the request once and, unless
// the handler already wrote a response, renders it as {"error": message}
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		appErr := FromError(c.Errors[0].Err)

		attrs := []any{
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"client_ip", c.ClientIP(),
			"status_code", appErr.StatusCode,
			"error_code", appErr.Code,
			"message", appErr.Message,
		}
		log := logger.FromContext(c)
		if appErr.StatusCode >= http.StatusInternalServerError {
			log.Error("Request error", attrs...)
		} else {
			log.Warn("Request error", attrs...)
		}

		if c.Writer.Written() {
			return
		}

		c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
			"error": appErr.Message,
		})
	}
}

// RecoveryWithLogger returns a middleware that recovers from any panics
// and logs the error with the request ID if available
func RecoveryWithLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())

				log := logger.FromContext(c)
				log.Error("Panic recovered",
					"error", fmt.Sprintf("%v", r),
					"stack", stack,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "The server encountered an unexpected error",
				})
			}
		}()

		c.Next()
	}
}
