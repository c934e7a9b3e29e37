package controllers

import (
	"context"
	"io"
)

// Request is the view of an inbound HTTP request that controllers depend on.
// Each framework adapter provides its own implementation.
type Request interface {
	Context() context.Context
	Param(name string) string
	Query(name string) string
	Header(name string) string
	Body() io.Reader
}

// Response writes a reply. Status records the code for the next write and
// returns the same Response so calls chain: res.Status(201).JSON(v).
type Response interface {
	Status(code int) Response
	JSON(v any) error
	// End writes the pending status with an empty body.
	End() error
}

// HandlerFunc is the framework neutral handler signature.
type HandlerFunc func(req Request, res Response)

// Envelope wraps every JSON body the API produces.
type Envelope struct {
	Success    bool         `json:"success"`
	Data       any          `json:"data,omitempty"`
	Message    string       `json:"message,omitempty"`
	Error      string       `json:"error,omitempty"`
	Errors     []FieldError `json:"errors,omitempty"`
	RetryAfter int          `json:"retryAfter,omitempty"`
}

// FieldError mirrors validation.FieldError in responses.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// OK wraps data in a success envelope.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail builds an error envelope with a client facing message.
func Fail(message string) Envelope {
	return Envelope{Success: false, Message: message}
}
