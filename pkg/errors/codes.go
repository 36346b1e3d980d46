package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
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
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

// Billing calculation error codes
const (
	ErrCodeFeeOutOfRange    ErrorCode = "BILL_001"
	ErrCodeInvalidMonth     ErrorCode = "BILL_002"
	ErrCodeInvalidAmount    ErrorCode = "BILL_003"
	ErrCodeInvalidStatus    ErrorCode = "BILL_004"
	ErrCodeEntryNotDerived  ErrorCode = "BILL_005"
	ErrCodeInvalidOperator  ErrorCode = "BILL_006"
	ErrCodeTransitionDenied ErrorCode = "BILL_007"
)

// Entry store error codes
const (
	ErrCodeEntryNotFound      ErrorCode = "ENTRY_001"
	ErrCodeEntryWriteConflict ErrorCode = "ENTRY_002"
)

// Client directory error codes
const (
	ErrCodeClientNotFound ErrorCode = "CLIENT_001"
	ErrCodeClientInvalid  ErrorCode = "CLIENT_002"
	ErrCodeClientInactive ErrorCode = "CLIENT_003"
)

// Settings error codes
const (
	ErrCodeSettingsNotFound ErrorCode = "SETTINGS_001"
	ErrCodeSettingsInvalid  ErrorCode = "SETTINGS_002"
)

// Export error codes
const (
	ErrCodeExportKindUnsupported ErrorCode = "EXPORT_001"
	ErrCodeExportUploadFailed    ErrorCode = "EXPORT_002"
)

// Aliases used by the convenience factories.
const (
	CodeUnknown        = ErrorCode("UNKNOWN")
	CodeOK             = ErrorCode("OK")
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeUnauthorized   = ErrCodeUnauthorized
	CodeForbidden      = ErrCodeForbidden
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeRateLimit      = ErrCodeTooManyRequests
	CodeNotImplemented = ErrCodeNotImplemented
	CodeValidation     = ErrCodeValidation

	CodeDatabaseError     = ErrCodeDatabaseError
	CodeCacheError        = ErrCodeCacheError
	CodeMessageQueueError = ErrCodeExternalService
	CodeStorageError      = ErrCodeExternalService
)

// notFoundCodes lists every code that means "the thing asked for is absent".
var notFoundCodes = map[ErrorCode]bool{
	ErrCodeNotFound:         true,
	ErrCodeEntryNotFound:    true,
	ErrCodeClientNotFound:   true,
	ErrCodeSettingsNotFound: true,
}

// validationCodes lists every code that means "the caller's input was rejected".
var validationCodes = map[ErrorCode]bool{
	ErrCodeBadRequest:            true,
	ErrCodeValidation:            true,
	ErrCodeFeeOutOfRange:         true,
	ErrCodeInvalidMonth:          true,
	ErrCodeInvalidAmount:         true,
	ErrCodeInvalidStatus:         true,
	ErrCodeEntryNotDerived:       true,
	ErrCodeInvalidOperator:       true,
	ErrCodeTransitionDenied:      true,
	ErrCodeClientInvalid:         true,
	ErrCodeClientInactive:        true,
	ErrCodeSettingsInvalid:       true,
	ErrCodeExportKindUnsupported: true,
}

// conflictCodes lists every code that means a write lost against concurrent state.
var conflictCodes = map[ErrorCode]bool{
	ErrCodeConflict:           true,
	ErrCodeEntryWriteConflict: true,
}

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
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeFeeOutOfRange:    http.StatusBadRequest,
	ErrCodeInvalidMonth:     http.StatusBadRequest,
	ErrCodeInvalidAmount:    http.StatusBadRequest,
	ErrCodeInvalidStatus:    http.StatusBadRequest,
	ErrCodeEntryNotDerived:  http.StatusUnprocessableEntity,
	ErrCodeInvalidOperator:  http.StatusBadRequest,
	ErrCodeTransitionDenied: http.StatusUnprocessableEntity,

	ErrCodeEntryNotFound:      http.StatusNotFound,
	ErrCodeEntryWriteConflict: http.StatusConflict,

	ErrCodeClientNotFound: http.StatusNotFound,
	ErrCodeClientInvalid:  http.StatusBadRequest,
	ErrCodeClientInactive: http.StatusUnprocessableEntity,

	ErrCodeSettingsNotFound: http.StatusNotFound,
	ErrCodeSettingsInvalid:  http.StatusBadRequest,

	ErrCodeExportKindUnsupported: http.StatusBadRequest,
	ErrCodeExportUploadFailed:    http.StatusBadGateway,
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
	ErrCodeSerialization:      "serialization error",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeFeeOutOfRange:    "service fee must be between 0 and 1",
	ErrCodeInvalidMonth:     "unrecognised month code",
	ErrCodeInvalidAmount:    "invalid amount",
	ErrCodeInvalidStatus:    "unrecognised status",
	ErrCodeEntryNotDerived:  "billing entry is not fully derived",
	ErrCodeInvalidOperator:  "outstanding operator must be + or -",
	ErrCodeTransitionDenied: "status transition not permitted",

	ErrCodeEntryNotFound:      "billing entry not found",
	ErrCodeEntryWriteConflict: "billing entry write conflict",

	ErrCodeClientNotFound: "client not found",
	ErrCodeClientInvalid:  "invalid client",
	ErrCodeClientInactive: "client is inactive",

	ErrCodeSettingsNotFound: "settings not found",
	ErrCodeSettingsInvalid:  "invalid settings",

	ErrCodeExportKindUnsupported: "unsupported export kind",
	ErrCodeExportUploadFailed:    "failed to upload export",
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
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
