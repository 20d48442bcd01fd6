package chain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var ErrEmptyResponse = errors.New("empty response")

// TransportError is an HTTP or network level failure. StatusCode is zero when
// no response was received.
type TransportError struct {
	Method     string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP error! status: %d", e.Method, e.StatusCode)
	}
	return fmt.Sprintf("%s: transport error: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Temporary reports failures worth another attempt: 5xx, 429 and network
// errors that are not caused by the caller's context.
func (e *TransportError) Temporary() bool {
	if e.StatusCode != 0 {
		return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
	}
	return !errors.Is(e.Err, context.Canceled) && !errors.Is(e.Err, context.DeadlineExceeded)
}

// RpcError is a JSON-RPC error envelope returned by the node.
type RpcError struct {
	Method  string
	Code    int
	Message string
}

const unknownRpcError = "Unknown error occurred"

func (e *RpcError) Error() string {
	message := e.Message
	if message == "" {
		message = unknownRpcError
	}
	return fmt.Sprintf("%s: RPC code(%d) error: %s", e.Method, e.Code, message)
}

func isRetryable(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Temporary()
	}
	return false
}
