package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidPort is returned when the port is outside 1-65535.
	ErrInvalidPort = errors.New("invalid port: must be between 1 and 65535")

	// ErrInvalidDebugInterval is returned when the debug overlay interval is not positive.
	ErrInvalidDebugInterval = errors.New("invalid debug interval: must be positive")

	// ErrInvalidHunterTimeout is returned when a hunter timeout or TTL is negative.
	ErrInvalidHunterTimeout = errors.New("invalid hunter timing: durations must be non-negative")

	// ErrInvalidLogLevel is returned for an unknown log level name.
	ErrInvalidLogLevel = errors.New("invalid log level: use debug, info, warn or error")

	// ErrConfigNotFound is returned when an explicitly named file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
