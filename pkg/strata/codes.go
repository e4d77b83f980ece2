package strata

import "net/http"

// ErrorCode identifies a failure class surfaced to API callers. The code
// strings and their HTTP status mapping are part of the wire contract.
type ErrorCode string

// Error code constants (typed).
const (
	CodeValidationError        ErrorCode = "VALIDATION_ERROR"
	CodeBadRequest             ErrorCode = "BAD_REQUEST"
	CodeAuthenticationRequired ErrorCode = "AUTHENTICATION_REQUIRED"
	CodeAuthenticationFailed   ErrorCode = "AUTHENTICATION_FAILED"
	CodeAuthorizationFailed    ErrorCode = "AUTHORIZATION_FAILED"
	CodeNotFound               ErrorCode = "NOT_FOUND"
	CodeMethodNotAllowed       ErrorCode = "METHOD_NOT_ALLOWED"
	CodeConflict               ErrorCode = "CONFLICT"
	CodeRateLimited            ErrorCode = "RATE_LIMITED"
	CodeInternalServerError    ErrorCode = "INTERNAL_SERVER_ERROR"
)

// HTTPStatus returns the HTTP status for the code. Unknown codes map to 500.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodeValidationError, CodeBadRequest:
		return http.StatusBadRequest
	case CodeAuthenticationRequired, CodeAuthenticationFailed:
		return http.StatusUnauthorized
	case CodeAuthorizationFailed:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeConflict:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
