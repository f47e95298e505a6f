package record

import "errors"

// Error variables for record parsing and validation.
var (
	ErrInvalidLevel     = errors.New("invalid level (want HIGH, MID or LOW)")
	ErrInvalidField     = errors.New("unknown record field")
	ErrInvalidPayload   = errors.New("invalid record")
	ErrOtherTextMissing = errors.New("free text is required when choosing " + OtherOption)
)
