// Package middleware holds the gin middleware chain and the shared error
// response used by handlers.
package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// ErrorBody is the JSON error envelope.  detail carries the user-facing
// message, code the pkg/errors code.
type ErrorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// AbortWithError maps err to a status and error body and stops the chain.
// Server errors are masked; the cause is attached to the gin context for the
// request log.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	status, body := Render(err)
	c.AbortWithStatusJSON(status, body)
}

// Render returns the status and body for err.
func Render(err error) (int, ErrorBody) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorBody{Detail: "Request timed out.", Code: string(errors.ErrCodeTimeout)}
	case errors.Is(err, context.Canceled):
		return 499, ErrorBody{Detail: "Request cancelled.", Code: string(errors.ErrCodeTimeout)}
	}

	var ae *errors.AppError
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError, ErrorBody{Detail: "Internal server error.", Code: string(errors.ErrCodeInternal)}
	}
	status := ae.HTTPStatus()
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		return status, ErrorBody{Detail: "Internal server error.", Code: string(ae.Code)}
	}
	msg := ae.Message
	if msg == "" {
		msg = errors.DefaultMessageForCode(ae.Code)
	}
	return status, ErrorBody{Detail: msg, Code: string(ae.Code)}
}
