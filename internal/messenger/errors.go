package messenger

import "fmt"

// ErrorCode is a structured stream/login failure category reported by a
// transport. Transports that cannot classify report CodeUnknown and the
// caller falls back to message inspection.
type ErrorCode string

const (
	CodeUnknown           ErrorCode = "unknown"
	CodeNotLoggedIn       ErrorCode = "not_logged_in"
	CodeSessionExpired    ErrorCode = "session_expired"
	CodeConnectionRefused ErrorCode = "connection_refused"
	CodeCheckpoint        ErrorCode = "checkpoint"
	CodeRateLimited       ErrorCode = "rate_limited"
)

// Error is a transport failure with an optional structured code.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("messenger: %s", e.Code)
}
