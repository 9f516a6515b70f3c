package apperrors

// ErrorKind classifies a failed ui action. Validation errors never reach the network.
type ErrorKind string

const (
	ErrKindValidation      ErrorKind = "validation"
	ErrKindBackend         ErrorKind = "backend"
	ErrKindTransport       ErrorKind = "transport"
	ErrKindInvalidResponse ErrorKind = "invalid_response"
	ErrKindInternal        ErrorKind = "internal"
)
