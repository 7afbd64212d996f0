package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trackreward/internal/reward"
)

type httpError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e httpError) Error() string {
	return e.Message
}

func (e httpError) Unwrap() error {
	return e.Err
}

func wrapError(statusCode int, err error) error {
	return httpError{
		StatusCode: statusCode,
		Message:    err.Error(),
		Err:        err,
	}
}

// statusFor maps a registry error to a response code. Broken reward input
// is the caller's fault, anything else is ours.
func statusFor(err error) int {
	var httpErr httpError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.StatusCode
	case errors.Is(err, reward.ErrInvalidInput),
		errors.Is(err, reward.ErrMissingParam),
		errors.Is(err, reward.ErrInvalidParam):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	_ = c.AbortWithError(statusFor(err), err)
}
