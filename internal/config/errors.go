package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration. They are
// package-level sentinels so callers can branch with errors.Is().
var (
	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no documents are ever processed.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidCaptionWorkers is returned when the caption worker count
	// is not positive. Zero workers would stall the caption fan-out.
	ErrInvalidCaptionWorkers = errors.New("invalid caption workers: must be positive")

	// ErrInvalidPollInterval is returned when the run poll interval is
	// not positive. Polling without sleeping would busy-spin.
	ErrInvalidPollInterval = errors.New("invalid run poll interval: must be positive")

	// ErrInvalidCaptionDelay is returned when the caption pacing delay is
	// negative. Use 0 to disable pacing.
	ErrInvalidCaptionDelay = errors.New("invalid caption delay: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrMissingAPIKey is returned at the point of use when no OpenAI API
	// key is configured. Missing credentials are fatal, not degraded.
	ErrMissingAPIKey = errors.New("missing API key: set the OPENAI_API_KEY environment variable")
)
