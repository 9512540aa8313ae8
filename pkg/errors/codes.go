package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes follow the "<MODULE>_<NNN>" convention.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
	ErrCodeInvalidArgument    ErrorCode = "COMMON_017"
	ErrCodeStorageError       ErrorCode = "COMMON_018"
	ErrCodeMessagingError     ErrorCode = "COMMON_019"
	ErrCodeSearchError        ErrorCode = "COMMON_020"
)

// Aliases used throughout the codebase.
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeUnauthorized   = ErrCodeUnauthorized
	CodeForbidden      = ErrCodeForbidden
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeRateLimit      = ErrCodeTooManyRequests
	CodeNotImplemented = ErrCodeNotImplemented
	CodeOK             = ErrorCode("OK")
	CodeUnknown        = ErrorCode("UNKNOWN")
)

// Auth Module Error Codes
const (
	ErrCodeEmailTaken         ErrorCode = "AUTH_001"
	ErrCodeInvalidCredentials ErrorCode = "AUTH_002"
	ErrCodeMissingCredentials ErrorCode = "AUTH_003"
	ErrCodeTokenInvalid       ErrorCode = "AUTH_004"
	ErrCodeTokenExpired       ErrorCode = "AUTH_005"
	ErrCodeTokenRevoked       ErrorCode = "AUTH_006"
	ErrCodeUserNotFound       ErrorCode = "AUTH_007"
	ErrCodeTenantNotFound     ErrorCode = "AUTH_008"
	ErrCodeUserInactive       ErrorCode = "AUTH_009"
)

// Document Module Error Codes
const (
	ErrCodeEmptyFile           ErrorCode = "DOC_001"
	ErrCodeUnsupportedEncoding ErrorCode = "DOC_002"
	ErrCodeNoText              ErrorCode = "DOC_003"
	ErrCodeDocumentNotFound    ErrorCode = "DOC_004"
	ErrCodeFileTooLarge        ErrorCode = "DOC_005"
	ErrCodeExtractionFailed    ErrorCode = "DOC_006"
	ErrCodeMissingFile         ErrorCode = "DOC_007"
)

// Claim Module Error Codes
const (
	ErrCodeClaimInvalid     ErrorCode = "CLM_001"
	ErrCodeAssessmentFailed ErrorCode = "CLM_002"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeFeatureDisabled:    http.StatusForbidden,
	ErrCodeNotImplemented:     http.StatusNotImplemented,
	ErrCodeInvalidArgument:    http.StatusBadRequest,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeMessagingError:     http.StatusInternalServerError,
	ErrCodeSearchError:        http.StatusInternalServerError,

	// The portal reports a taken email as a plain bad request.
	ErrCodeEmailTaken:         http.StatusBadRequest,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeMissingCredentials: http.StatusBadRequest,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeUserNotFound:       http.StatusNotFound,
	ErrCodeTenantNotFound:     http.StatusNotFound,
	ErrCodeUserInactive:       http.StatusUnauthorized,

	ErrCodeEmptyFile:           http.StatusBadRequest,
	ErrCodeUnsupportedEncoding: http.StatusBadRequest,
	ErrCodeNoText:              http.StatusBadRequest,
	ErrCodeDocumentNotFound:    http.StatusNotFound,
	ErrCodeFileTooLarge:        http.StatusRequestEntityTooLarge,
	ErrCodeExtractionFailed:    http.StatusBadRequest,
	ErrCodeMissingFile:         http.StatusBadRequest,

	ErrCodeClaimInvalid:     http.StatusBadRequest,
	ErrCodeAssessmentFailed: http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeFeatureDisabled:    "feature disabled",
	ErrCodeNotImplemented:     "not implemented",
	ErrCodeInvalidArgument:    "invalid argument",
	ErrCodeStorageError:       "object storage error",
	ErrCodeMessagingError:     "messaging error",
	ErrCodeSearchError:        "search error",

	ErrCodeEmailTaken:         "Email already registered",
	ErrCodeInvalidCredentials: "Invalid email or password.",
	ErrCodeMissingCredentials: "Email and password are required.",
	ErrCodeTokenInvalid:       "Could not validate credentials",
	ErrCodeTokenExpired:       "token has expired",
	ErrCodeTokenRevoked:       "token has been revoked",
	ErrCodeUserNotFound:       "user not found",
	ErrCodeTenantNotFound:     "tenant not found",
	ErrCodeUserInactive:       "user is inactive",

	ErrCodeEmptyFile:           "Empty file.",
	ErrCodeUnsupportedEncoding: "Unsupported file encoding.",
	ErrCodeNoText:              "Could not extract text from the document.",
	ErrCodeDocumentNotFound:    "document not found",
	ErrCodeFileTooLarge:        "file too large",
	ErrCodeExtractionFailed:    "text extraction failed",
	ErrCodeMissingFile:         "file is required",

	ErrCodeClaimInvalid:     "invalid claim",
	ErrCodeAssessmentFailed: "fraud assessment failed",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
