package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidInterval      ErrorCode = 102
	ErrCodeMissingParameter     ErrorCode = 103

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound      ErrorCode = 200
	ErrCodeCatalogLoadFailed ErrorCode = 201
	ErrCodeSeriesLoadFailed  ErrorCode = 202

	// Feed errors (300-399)
	ErrCodeFetchFailed       ErrorCode = 300
	ErrCodeWriteFailed       ErrorCode = 301
	ErrCodeInvalidProvider   ErrorCode = 302
	ErrCodeAgentUnavailable  ErrorCode = 303
	ErrCodeFeedNotConfigured ErrorCode = 304
)
