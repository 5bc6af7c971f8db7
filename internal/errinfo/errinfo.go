package errinfo

import (
	"errors"
	"net/http"
)

const (
	CodeConnectionFailed  = "CONNECTION_FAILED"
	CodeInvocationFailed  = "INVOCATION_FAILED"
	CodeInvocationTimeout = "INVOCATION_TIMEOUT"
	CodeCreationFailed    = "CREATION_FAILED"
	CodeNotFound          = "NOT_FOUND"
	CodeEmptyResponse     = "EMPTY_RESPONSE"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeProcessingFailed  = "PROCESSING_FAILED"
	CodeReconnectFailed   = "RECONNECT_FAILED"
)

// ErrorInfo is the structured error carried across component
// boundaries. Handlers map it to the HTTP envelope; internals log the
// wrapped cause, which never reaches a response body.
type ErrorInfo struct {
	ErrorCode string
	Status    int
	Detail    string
	Details   []string
	cause     error
}

func (e *ErrorInfo) Error() string {
	if e.Detail != "" {
		return e.ErrorCode + ": " + e.Detail
	}
	return e.ErrorCode
}

func (e *ErrorInfo) Unwrap() error {
	return e.cause
}

// From normalizes any error for the HTTP boundary. Unknown errors
// become an opaque PROCESSING_FAILED so internals never leak.
func From(err error) *ErrorInfo {
	var info *ErrorInfo
	if errors.As(err, &info) {
		return info
	}
	return &ErrorInfo{
		ErrorCode: CodeProcessingFailed,
		Status:    http.StatusInternalServerError,
		Detail:    "Internal server error",
		cause:     err,
	}
}

func ConnectionFailed(detail string, cause error) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeConnectionFailed,
		Status:    http.StatusInternalServerError,
		Detail:    detail,
		cause:     cause,
	}
}

func InvocationFailed(tool string, cause error) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeInvocationFailed,
		Status:    http.StatusInternalServerError,
		Detail:    "tool call failed: " + tool,
		cause:     cause,
	}
}

func InvocationTimeout(tool string, cause error) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeInvocationTimeout,
		Status:    http.StatusInternalServerError,
		Detail:    "tool call timed out: " + tool,
		cause:     cause,
	}
}

func CreationFailed(detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeCreationFailed,
		Status:    http.StatusInternalServerError,
		Detail:    detail,
	}
}

func NotFound(detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeNotFound,
		Status:    http.StatusNotFound,
		Detail:    detail,
	}
}

func EmptyResponse(detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeEmptyResponse,
		Status:    http.StatusInternalServerError,
		Detail:    detail,
	}
}

func ValidationFailed(details []string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeValidationFailed,
		Status:    http.StatusBadRequest,
		Detail:    "Validation error",
		Details:   details,
	}
}

func BadRequest(detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeValidationFailed,
		Status:    http.StatusBadRequest,
		Detail:    detail,
	}
}

func PayloadTooLarge(detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeValidationFailed,
		Status:    http.StatusRequestEntityTooLarge,
		Detail:    detail,
	}
}

func ProcessingFailed(detail string, cause error) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeProcessingFailed,
		Status:    http.StatusInternalServerError,
		Detail:    detail,
		cause:     cause,
	}
}

func ReconnectFailed(detail string, cause error) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeReconnectFailed,
		Status:    http.StatusInternalServerError,
		Detail:    detail,
		cause:     cause,
	}
}
