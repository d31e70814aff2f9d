package telegram

import "fmt"

// TransportError is a network-level failure reaching the external API.
// The polling source retries these with backoff; method calls surface them.
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("canoe/telegram: transport error calling %s: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodingError means a response body did not parse into the expected
// envelope or payload shape. Never retried.
type DecodingError struct {
	Method string
	Err    error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("canoe/telegram: failed to decode response of %s: %v", e.Method, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// FailedMethodError means the API responded with ok=false. Never retried;
// carries the method name and the API's own diagnostics.
type FailedMethodError struct {
	Method      string
	Description string
	ErrorCode   int
}

func (e *FailedMethodError) Error() string {
	return fmt.Sprintf("canoe/telegram: %s failed (%d): %s", e.Method, e.ErrorCode, e.Description)
}
