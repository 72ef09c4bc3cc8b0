package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz id or slug does not resolve.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizExpired indicates the quiz is past its expiry date.
	ErrQuizExpired = errors.New("quiz expired")
	// ErrSessionSubmitted is returned for answer mutations after submission.
	ErrSessionSubmitted = errors.New("attempt already submitted")
	// ErrSessionNotStarted is returned for actions before the session starts.
	ErrSessionNotStarted = errors.New("attempt session not started")
)

// ValidationError rejects a quiz before any write, naming the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// IsValidation reports whether err is a pre-write validation rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
