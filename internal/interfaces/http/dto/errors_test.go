package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeInvariant, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidAmount, http.StatusBadRequest},
		{ErrCodeEmptySelection, http.StatusBadRequest},
		{ErrCodeInvalidSelection, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeInsufficientBalance, http.StatusUnprocessableEntity},
		{ErrCodeBusinessRule, http.StatusUnprocessableEntity},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Domain codes should be normalized to the wire format
		{"NOT_FOUND", ErrCodeNotFound},
		{"PARTY_NOT_FOUND", ErrCodeNotFound},
		{"BILL_NOT_FOUND", ErrCodeNotFound},
		{"INVALID_AMOUNT", ErrCodeInvalidAmount},
		{"INVALID_PAYMENT_MODE", ErrCodeInvalidInput},
		{"INVALID_STATUS", ErrCodeInvalidInput},
		{"EMPTY_SELECTION", ErrCodeEmptySelection},
		{"INVALID_SELECTION", ErrCodeInvalidSelection},
		{"INVALID_STATE", ErrCodeInvalidState},
		{"EXCEEDS_BALANCE", ErrCodeBusinessRule},
		{"INSUFFICIENT_BALANCE", ErrCodeInsufficientBalance},
		{"CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict},
		{"INVARIANT_VIOLATION", ErrCodeInvariant},
		// Wire codes should pass through unchanged
		{ErrCodeNotFound, ErrCodeNotFound},
		{ErrCodeValidation, ErrCodeValidation},
		// Unknown codes should pass through unchanged
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestDomainErrorCodeMappingCoversHTTPStatus(t *testing.T) {
	// Every mapped wire code must have an explicit HTTP status, otherwise
	// domain errors would silently degrade to 500
	for domainCode, wireCode := range DomainErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[wireCode]
		assert.True(t, ok, "wire code %s (from %s) missing HTTP status", wireCode, domainCode)
	}
}
