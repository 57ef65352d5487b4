package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	// ErrCodeNotOwner is used when a customer acts on another partner's order
	ErrCodeNotOwner = "ERR_NOT_OWNER"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Return workflow error codes
const (
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeMissingReason is used when a return request has a blank reason
	ErrCodeMissingReason = "ERR_MISSING_REASON"
	// ErrCodeNoValidLines is used when every requested line was rejected
	ErrCodeNoValidLines = "ERR_NO_VALID_LINES"
	// ErrCodeEmptyReturn is used when a return order has nothing to ship back
	ErrCodeEmptyReturn = "ERR_EMPTY_RETURN"
	// ErrCodeInsufficientDelivered is used when confirmation finds too little delivered stock
	ErrCodeInsufficientDelivered = "ERR_INSUFFICIENT_DELIVERED_QUANTITY"
	// ErrCodeInsufficientReturnable is used when a delivered move was already reversed
	ErrCodeInsufficientReturnable = "ERR_INSUFFICIENT_RETURNABLE_QUANTITY"
	ErrCodeIncompleteDispatch     = "ERR_INCOMPLETE_DISPATCH"
	ErrCodeInvalidQuantity        = "ERR_INVALID_QUANTITY"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeNotOwner:     http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:           http.StatusUnprocessableEntity,
	ErrCodeMissingReason:          http.StatusUnprocessableEntity,
	ErrCodeNoValidLines:           http.StatusUnprocessableEntity,
	ErrCodeEmptyReturn:            http.StatusUnprocessableEntity,
	ErrCodeInsufficientDelivered:  http.StatusUnprocessableEntity,
	ErrCodeInsufficientReturnable: http.StatusUnprocessableEntity,
	ErrCodeIncompleteDispatch:     http.StatusUnprocessableEntity,
	ErrCodeInvalidQuantity:        http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                        ErrCodeNotFound,
	"ALREADY_EXISTS":                   ErrCodeAlreadyExists,
	"INVALID_INPUT":                    ErrCodeBadRequest,
	"INVALID_STATE":                    ErrCodeInvalidState,
	"UNAUTHORIZED":                     ErrCodeUnauthorized,
	"FORBIDDEN":                        ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":             ErrCodeConcurrencyConflict,
	"NOT_OWNER":                        ErrCodeNotOwner,
	"MISSING_REASON":                   ErrCodeMissingReason,
	"NO_VALID_LINES":                   ErrCodeNoValidLines,
	"EMPTY_RETURN":                     ErrCodeEmptyReturn,
	"INSUFFICIENT_DELIVERED_QUANTITY":  ErrCodeInsufficientDelivered,
	"INSUFFICIENT_RETURNABLE_QUANTITY": ErrCodeInsufficientReturnable,
	"INCOMPLETE_DISPATCH":              ErrCodeIncompleteDispatch,
	"INVALID_QUANTITY":                 ErrCodeInvalidQuantity,
	"EMPTY_TRANSFER":                   ErrCodeInvalidState,
	"INVALID_SOURCE_MOVE":              ErrCodeInvalidState,
	"MOVE_NOT_FOUND":                   ErrCodeNotFound,
	"INVALID_FILTER":                   ErrCodeBadRequest,
	"INVALID_SORT":                     ErrCodeBadRequest,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format or unknown are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}

// Portal form error parameters, sent back as ?error=<param>
const (
	PortalErrorNoReason      = "no_reason"
	PortalErrorNoValidLines  = "no_valid_products"
	PortalErrorServer        = "server_error"
	PortalErrorInvalidInput  = "invalid_request"
	PortalErrorNotReturnable = "not_returnable"
)

// PortalErrorParam maps a domain error code to the portal form error parameter
func PortalErrorParam(code string) string {
	switch NormalizeErrorCode(code) {
	case ErrCodeMissingReason:
		return PortalErrorNoReason
	case ErrCodeNoValidLines:
		return PortalErrorNoValidLines
	case ErrCodeBadRequest, ErrCodeValidation:
		return PortalErrorInvalidInput
	case ErrCodeInvalidState:
		return PortalErrorNotReturnable
	default:
		return PortalErrorServer
	}
}
