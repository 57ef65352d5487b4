package handler

import "github.com/erp/returns/internal/interfaces/http/dto"

// APIResponse documents the response envelope with a concrete data type.
// Handlers write dto.Response; this mirror exists for swag annotations and
// for decoding in tests.
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// CountData is the payload of the count endpoints.
type CountData struct {
	Count int64 `json:"count"`
}
