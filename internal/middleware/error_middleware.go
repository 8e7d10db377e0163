package middleware

import (
	"errors"
	"net/http"

	"atendimento-relay/internal/transport/httpdto"
	relay_errors "atendimento-relay/pkg/errors"
	"atendimento-relay/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error attached with c.Error using the response envelope.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, code := classify(err)
		if l != nil && status >= http.StatusInternalServerError {
			l.Errorf("request error: %s", err.Error())
		}
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
	}
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, relay_errors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, relay_errors.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, relay_errors.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, relay_errors.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
