package cartapi

import "fmt"

// ApplicationError means the server answered but flagged the operation as failed.
// Message is the server's own text.
type ApplicationError struct {
	Op       string
	Message  string
	Response *Response
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("cart %s rejected: %s", e.Op, e.Message)
}

// TransportError covers everything that kept us from reading a well-formed reply:
// dial failures, timeouts, non-JSON bodies.
type TransportError struct {
	Op     string
	Status int // 0 when no response arrived
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("cart %s failed (status %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("cart %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
