package strata

import (
	"net/http"
	"time"
)

// ErrorInfo is the error block of the response envelope.
type ErrorInfo struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details []string  `json:"details,omitempty"`
}

// Meta is the envelope metadata stamped onto every response by the engine.
type Meta struct {
	RequestID      string    `json:"requestId"`
	Timestamp      time.Time `json:"timestamp"`
	Version        string    `json:"version"`
	ProcessingTime string    `json:"processingTime,omitempty"`
}

// Response is the engine's uniform result value. Middlewares and the
// orchestrator only ever produce and decorate responses; nothing inside the
// engine writes HTTP directly.
type Response struct {
	Status  int
	Success bool
	Message string
	Data    any
	Error   *ErrorInfo
	Header  http.Header
	Meta    Meta
}

// SetHeader records a header to be written alongside the response.
func (r *Response) SetHeader(key, value string) {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(key, value)
}

// Envelope is the wire shape shared by every API response.
type Envelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    Meta       `json:"meta"`
}

// Envelope converts the response into its wire form.
func (r *Response) Envelope() Envelope {
	return Envelope{
		Success: r.Success,
		Message: r.Message,
		Data:    r.Data,
		Error:   r.Error,
		Meta:    r.Meta,
	}
}

// OK builds a successful response with HTTP 200.
func OK(message string, data any) *Response {
	return &Response{Status: http.StatusOK, Success: true, Message: message, Data: data}
}

// Created builds a successful response with HTTP 201.
func Created(message string, data any) *Response {
	return &Response{Status: http.StatusCreated, Success: true, Message: message, Data: data}
}

// Fail builds an error response; the HTTP status derives from the code.
func Fail(code ErrorCode, message string, details ...string) *Response {
	return &Response{
		Status:  code.HTTPStatus(),
		Message: message,
		Error:   &ErrorInfo{Code: code, Message: message, Details: details},
	}
}

// ListResult is the data payload of a list operation.
type ListResult struct {
	Entries    []ContentEntry `json:"entries"`
	Pagination Pagination     `json:"pagination"`
}

// Pagination describes the window a list operation returned.
type Pagination struct {
	Page            int  `json:"page"`
	Limit           int  `json:"limit"`
	Total           int  `json:"total"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}
