package runner

import "blockstack.ai/internal/protocol"

// RunError is a failed precondition or an unmet goal clause. The message is
// the human-readable form recorded in results; the code is the stable
// protocol identifier. Errors are plain values: a failed move never panics
// and never touches the scene.
type RunError struct {
	Code    string
	Message string
}

func (e *RunError) Error() string { return e.Message }

func newError(code, message string) *RunError {
	if !protocol.IsKnownCode(code) {
		code = protocol.ErrInternal
	}
	return &RunError{Code: code, Message: message}
}
