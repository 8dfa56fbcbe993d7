package apperrors

import "errors"

var (
	ErrUnavailable      = errors.New("backend unavailable")
	ErrMalformedPayload = errors.New("malformed backend payload")
	ErrInvalidURI       = errors.New("invalid resource uri")
	ErrMissingParameter = errors.New("missing required parameter")
	ErrUnsafeArgument   = errors.New("unsafe query argument")
)
