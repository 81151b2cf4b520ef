package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeInvariant is used when a conservation check failed after
	// validation passed; the transaction was rolled back
	ErrCodeInvariant = "ERR_INVARIANT"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidAmount is used when an amount is missing, zero, or negative
	ErrCodeInvalidAmount = "ERR_INVALID_AMOUNT"
	// ErrCodeEmptySelection is used when a payment names no bills
	ErrCodeEmptySelection = "ERR_EMPTY_SELECTION"
	// ErrCodeInvalidSelection is used when selected bills do not belong to the party
	ErrCodeInvalidSelection = "ERR_INVALID_SELECTION"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for the current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeInsufficientBalance is used when a payment exceeds the selected balance
	ErrCodeInsufficientBalance = "ERR_INSUFFICIENT_BALANCE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when the rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:   http.StatusInternalServerError,
	ErrCodeInternal:  http.StatusInternalServerError,
	ErrCodeInvariant: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeInvalidAmount:    http.StatusBadRequest,
	ErrCodeEmptySelection:   http.StatusBadRequest,
	ErrCodeInvalidSelection: http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientBalance: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:        http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the wire format
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"PARTY_NOT_FOUND":        ErrCodeNotFound,
	"BILL_NOT_FOUND":         ErrCodeNotFound,
	"ALREADY_EXISTS":         ErrCodeAlreadyExists,
	"INVALID_INPUT":          ErrCodeInvalidInput,
	"INVALID_AMOUNT":         ErrCodeInvalidAmount,
	"INVALID_PAYMENT_MODE":   ErrCodeInvalidInput,
	"INVALID_PAYMENT_DATE":   ErrCodeInvalidInput,
	"INVALID_RANGE":          ErrCodeInvalidInput,
	"INVALID_BILL_NUMBER":    ErrCodeInvalidInput,
	"INVALID_RECEIPT_NUMBER": ErrCodeInvalidInput,
	"INVALID_BILL_DATE":      ErrCodeInvalidInput,
	"INVALID_STATUS":         ErrCodeInvalidInput,
	"INVALID_DIRECTION":      ErrCodeInvalidInput,
	"INVALID_PARTY":          ErrCodeInvalidInput,
	"INVALID_PARTY_TYPE":     ErrCodeInvalidInput,
	"INVALID_PARTY_NAME":     ErrCodeInvalidInput,
	"EMPTY_SELECTION":        ErrCodeEmptySelection,
	"INVALID_SELECTION":      ErrCodeInvalidSelection,
	"INVALID_STATE":          ErrCodeInvalidState,
	"EXCEEDS_BALANCE":        ErrCodeBusinessRule,
	"EXCEEDS_TOTAL":          ErrCodeBusinessRule,
	"ALREADY_ALLOCATED":      ErrCodeBusinessRule,
	"INSUFFICIENT_BALANCE":   ErrCodeInsufficientBalance,
	"CONCURRENCY_CONFLICT":   ErrCodeConcurrencyConflict,

	// Normally consumed by the replay path before reaching a handler
	"DUPLICATE_IDEMPOTENCY_KEY": ErrCodeConcurrencyConflict,

	"INVARIANT_VIOLATION": ErrCodeInvariant,
}

// NormalizeErrorCode converts a domain error code to the wire format.
// Unknown codes pass through as-is.
func NormalizeErrorCode(code string) string {
	if wireCode, ok := DomainErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}
