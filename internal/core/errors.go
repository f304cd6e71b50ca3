package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeClientNotFound   = "client_not_found"
	ErrCodeChannelNotFound  = "channel_not_found"
	ErrCodePasswordRequired = "password_required"
	ErrCodeInvalidPassword  = "invalid_password"
	ErrCodeNotJoined        = "not_joined"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeBadRequest       = "bad_request"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrClientNotFound   = errors.New("client not found")
	ErrChannelNotFound  = errors.New("channel not found")
	ErrPasswordRequired = errors.New("password required")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrNotJoined        = errors.New("not joined")
	ErrRateLimited      = errors.New("rate limited")
	ErrBadRequest       = errors.New("bad request")
)

var codes = map[error]string{
	ErrValidation:       ErrCodeValidationFailed,
	ErrClientNotFound:   ErrCodeClientNotFound,
	ErrChannelNotFound:  ErrCodeChannelNotFound,
	ErrPasswordRequired: ErrCodePasswordRequired,
	ErrInvalidPassword:  ErrCodeInvalidPassword,
	ErrNotJoined:        ErrCodeNotJoined,
	ErrRateLimited:      ErrCodeRateLimited,
	ErrBadRequest:       ErrCodeBadRequest,
}

// CoreError wraps a code and human-readable message.
// ValidationErrors is set instead of a single message for payload validation failures.
type CoreError struct {
	Code             string
	Message          string
	ValidationErrors []string

	err error
}

func (e *CoreError) Error() string {
	if e.Message == "" && len(e.ValidationErrors) > 0 {
		return e.ValidationErrors[0]
	}
	return e.Message
}

func (e *CoreError) Unwrap() error {
	return e.err
}

// NewError builds a CoreError for one of the sentinel errors above with a client-facing message.
func NewError(sentinel error, msg string) *CoreError {
	code, ok := codes[sentinel]
	if !ok {
		code = ErrCodeBadRequest
	}
	return &CoreError{Code: code, Message: msg, err: sentinel}
}

func validationError(messages []string) *CoreError {
	return &CoreError{
		Code:             ErrCodeValidationFailed,
		ValidationErrors: messages,
		err:              ErrValidation,
	}
}

// asCoreError converts any handler error into the uniform failure shape.
func asCoreError(err error) *CoreError {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr
	}
	return &CoreError{Code: ErrCodeBadRequest, Message: err.Error(), err: err}
}
