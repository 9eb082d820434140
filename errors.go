package httpcore

import "errors"

// Sentinel errors surfaced through Callbacks.OnError, grounded on the
// teacher's errors/errors.go package-level var Err... style.
var (
	// ErrMalformedHead is returned when a request head violates the wire
	// format: a CR not followed by LF, or a missing terminal blank line.
	ErrMalformedHead = errors.New("httpcore: malformed request head")

	// ErrHeaderFieldsTooLarge is returned when an incomplete request head
	// exceeds MaxFallbackSize bytes without completing.
	ErrHeaderFieldsTooLarge = errors.New("httpcore: request head too large")

	// ErrTooManyHeaders is returned when more than MaxHeaders-1 headers are
	// present without reaching the terminal blank line.
	ErrTooManyHeaders = errors.New("httpcore: too many headers")

	// ErrBadContentLength is returned when the Content-Length header
	// contains a non-digit byte or overflows a 32-bit counter. This is the
	// "safe reimplementation" spec.md's Open Question leaves optional.
	ErrBadContentLength = errors.New("httpcore: bad content-length")

	// ErrChunkedBody is returned when the chunked-transfer wire format is
	// violated mid-body.
	ErrChunkedBody = errors.New("httpcore: malformed chunked body")
)
