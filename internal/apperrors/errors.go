package apperrors

type ErrorCode string

const (
	ErrCodeBackendUnavailable ErrorCode = "backend_unavailable"
	ErrCodeInternalError      ErrorCode = "internal_error"
	ErrCodeRateLimitExceeded  ErrorCode = "rate_limit_exceeded"
	ErrCodeRequestTooLarge    ErrorCode = "request_too_large"
)
