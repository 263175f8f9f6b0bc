package mailbox

import "fmt"

// ErrorCode identifies the stage of a mail session that failed.
type ErrorCode string

const (
	ErrConnect   ErrorCode = "CONNECT_FAILED"
	ErrAuth      ErrorCode = "AUTH_FAILED"
	ErrSelect    ErrorCode = "SELECT_FAILED"
	ErrFetch     ErrorCode = "FETCH_FAILED"
	ErrMboxRead  ErrorCode = "MBOX_READ_FAILED"
	ErrCancelled ErrorCode = "CANCELLED"
)

// Error is a structured error for mail session failures. Any Error aborts the
// whole fetch; callers never receive a partial message list with it.
type Error struct {
	Code      ErrorCode
	Message   string
	Host      string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether this error is retryable.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}
