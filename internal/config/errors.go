package config

import "errors"

// Config errors.
var (
	ErrFileNotFound    = errors.New("config file not found")
	ErrFileRead        = errors.New("cannot read config file")
	ErrInvalid         = errors.New("invalid config file")
	ErrUnknownBackend  = errors.New("unknown backend (want local, gas or sheets)")
	ErrMissingKey      = errors.New("missing required config key")
	ErrInvalidTimezone = errors.New("invalid timezone")
	ErrInvalidTimeout  = errors.New("invalid timeout")
	ErrDotEnv          = errors.New("invalid .env file")
)
