package language

import "errors"

var (
	// ErrInvalidModel indicates a model with inconsistent parameters.
	ErrInvalidModel = errors.New("language: invalid model")

	// ErrSchema indicates a model document that does not match the schema.
	ErrSchema = errors.New("language: schema validation failed")
)
