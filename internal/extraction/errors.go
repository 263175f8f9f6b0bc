package extraction

import "fmt"

// DecodeErrorCode identifies why a message body could not be decoded.
type DecodeErrorCode string

const (
	ErrMalformedMIME  DecodeErrorCode = "MALFORMED_MIME"
	ErrUnknownCharset DecodeErrorCode = "UNKNOWN_CHARSET"
	ErrPartRead       DecodeErrorCode = "PART_READ_FAILED"
	ErrInvalidPDF     DecodeErrorCode = "INVALID_PDF"
)

// DecodeError is a structured error for decode failures. It is attached to a
// DecodedMessage for logging; decoding never drops a message.
type DecodeError struct {
	Code      DecodeErrorCode
	Message   string
	MessageID string
	Cause     error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
