package reactive

import "fmt"

// ErrorCode classifies the handful of ways a call into the engine can fail
// outside of a user-supplied compute function misbehaving on its own terms.
type ErrorCode string

const (
	// OutOfContext marks a call made from the wrong evaluation context:
	// ReadInsideFormula outside of any formula evaluation, or Set called
	// while one is in progress.
	OutOfContext ErrorCode = "out_of_context"

	// UserAbrupt marks a value produced by a Formula or Subscription whose
	// compute/get function panicked or returned an error. The original
	// value is re-raised to every reader rather than wrapped in an
	// EngineError; this code only documents the taxonomy.
	UserAbrupt ErrorCode = "user_abrupt"

	// ListenerException marks a panic raised by a listener callback
	// registered via AddListener. It is reported through the node's
	// OnPanic hook (or logged) and never propagated to the writer that
	// triggered the notification.
	ListenerException ErrorCode = "listener_exception"
)

// EngineError is the error type returned (or panicked with) for the
// OutOfContext condition. Compute-function failures are not wrapped in an
// EngineError; they are re-raised as-is so that equality checks between
// two abrupt completions compare the original values.
type EngineError struct {
	Code ErrorCode
	Message string
	Err error
}

func (e *EngineError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("reactive: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("reactive: %s", e.Code)
}

func (e *EngineError) Unwrap() error { return e.Err }
