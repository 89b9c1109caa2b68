package service

import "errors"

// ErrNoteNotFound covers a note that is absent, soft-deleted, or owned by
// another user; callers cannot tell those apart.
var ErrNoteNotFound = errors.New("note not found")

// ValidationError rejects malformed input before any storage operation is
// attempted.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(message string) error {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
