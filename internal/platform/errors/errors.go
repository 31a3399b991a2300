package apperrors

import "errors"

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrDriverStopped = errors.New("driver connection closed")
)
