package matrix

import (
	"errors"
	"fmt"
	"time"
)

// MatrixError is the structured error body of a non-2xx homeserver response.
type MatrixError struct {
	Code         string `json:"errcode"`
	Message      string `json:"error"`
	RetryAfterMs int64  `json:"retry_after_ms,omitempty"`
	StatusCode   int    `json:"-"`
}

func (e *MatrixError) Error() string {
	return fmt.Sprintf("matrix: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

const (
	ErrCodeForbidden     = "M_FORBIDDEN"
	ErrCodeUnknownToken  = "M_UNKNOWN_TOKEN"
	ErrCodeNotFound      = "M_NOT_FOUND"
	ErrCodeLimitExceeded = "M_LIMIT_EXCEEDED"
	ErrCodeUnknown       = "M_UNKNOWN"
)

// IsMatrixError checks whether err is a *MatrixError with the given error code.
func IsMatrixError(err error, code string) bool {
	var matrixErr *MatrixError
	if errors.As(err, &matrixErr) {
		return matrixErr.Code == code
	}
	return false
}

// RetryAfter returns how long the server asked us to back off, if err is a rate limit.
func RetryAfter(err error) (time.Duration, bool) {
	var matrixErr *MatrixError
	if !errors.As(err, &matrixErr) || matrixErr.Code != ErrCodeLimitExceeded {
		return 0, false
	}
	return time.Duration(matrixErr.RetryAfterMs) * time.Millisecond, true
}
