package errors

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "COMMON_001", ErrCodeInternal.String())
	assert.Equal(t, "ENTRY_001", ErrCodeEntryNotFound.String())
}

func TestHTTPStatusForCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeInternal, 500},
		{ErrCodeBadRequest, 400},
		{ErrCodeNotFound, 404},
		{ErrCodeConflict, 409},
		{ErrCodeValidation, 422},
		{ErrCodeEntryNotFound, 404},
		{ErrCodeClientNotFound, 404},
		{ErrCodeEntryWriteConflict, 409},
		{ErrCodeInvalidMonth, 400},
		{ErrCodeEntryNotDerived, 422},
		{ErrorCode("UNKNOWN"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, HTTPStatusForCode(tt.code), string(tt.code))
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "internal server error", DefaultMessageForCode(ErrCodeInternal))
	assert.Equal(t, "billing entry not found", DefaultMessageForCode(ErrCodeEntryNotFound))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("UNKNOWN")))
}

func TestIsClientServerError(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeFeeOutOfRange))
	assert.False(t, IsClientError(ErrCodeDatabaseError))
	assert.True(t, IsServerError(ErrCodeDatabaseError))
	assert.False(t, IsServerError(ErrCodeEntryNotFound))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "COMMON", ModuleForCode(ErrCodeInternal))
	assert.Equal(t, "BILL", ModuleForCode(ErrCodeFeeOutOfRange))
	assert.Equal(t, "ENTRY", ModuleForCode(ErrCodeEntryNotFound))
	assert.Equal(t, "CLIENT", ModuleForCode(ErrCodeClientNotFound))
	assert.Equal(t, "SETTINGS", ModuleForCode(ErrCodeSettingsNotFound))
	assert.Equal(t, "EXPORT", ModuleForCode(ErrCodeExportUploadFailed))
	assert.Equal(t, "UNKNOWN", ModuleForCode(ErrorCode("")))
}

func TestErrorCodeFormat_Convention(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z]+_\d{3}$`)
	for code := range ErrorCodeHTTPStatus {
		assert.Regexp(t, pattern, string(code))
		_, hasMsg := ErrorCodeMessage[code]
		assert.True(t, hasMsg, "missing default message for %s", code)
	}
}

func TestClassificationSetsHaveStatuses(t *testing.T) {
	for code := range notFoundCodes {
		assert.Equal(t, 404, HTTPStatusForCode(code), string(code))
	}
	for code := range conflictCodes {
		assert.Equal(t, 409, HTTPStatusForCode(code), string(code))
	}
	for code := range validationCodes {
		assert.True(t, IsClientError(code), string(code))
	}
}

//Personal.AI order the ending
