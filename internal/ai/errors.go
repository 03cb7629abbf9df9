package ai

import (
	"errors"
	"fmt"
	"time"
)

// GatewayError reports a transport-level failure of an external gateway.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("gateway %s failed", e.Op)
	}
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// GatewayTimeoutError reports that a gateway call exceeded its time budget.
type GatewayTimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *GatewayTimeoutError) Error() string {
	return fmt.Sprintf("gateway %s timed out after %s", e.Op, e.Timeout)
}

// IsRetryable reports whether err is a gateway failure worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var gwErr *GatewayError
	var timeoutErr *GatewayTimeoutError
	return errors.As(err, &gwErr) || errors.As(err, &timeoutErr)
}
