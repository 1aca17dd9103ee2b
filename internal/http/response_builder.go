// Package http provides HTTP server and handler implementations.
//
// This file implements a small builder for JSON and download responses so that
// every handler writes status, headers and error bodies the same way.

package http

import (
	"encoding/json"
	"net/http"
)

// ResponseBuilder provides a fluent API for building responses.
type ResponseBuilder struct {
	statusCode int
	body       []byte
	headers    map[string]string
	err        error
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON encodes v as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	body, err := json.Marshal(v)
	if err != nil {
		b.err = err
		return b
	}
	b.headers["Content-Type"] = "application/json; charset=utf-8"
	b.body = append(body, '\n')
	return b
}

// Attachment sets a download body with the given file name and content type.
func (b *ResponseBuilder) Attachment(fileName, contentType string, content []byte) *ResponseBuilder {
	b.headers["Content-Type"] = contentType + "; charset=utf-8"
	b.headers["Content-Disposition"] = `attachment; filename="` + fileName + `"`
	b.body = content
	return b
}

// BodyString sets a plain text body.
func (b *ResponseBuilder) BodyString(content string) *ResponseBuilder {
	b.headers["Content-Type"] = "text/plain; charset=utf-8"
	b.body = []byte(content)
	return b
}

// Write sends the built response. An encoding failure turns into a 500.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	if b.err != nil {
		InternalServerError("failed to encode response").Write(w)
		return
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(errorBody{Error: message})
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func PayloadTooLargeError() *ResponseBuilder {
	return ErrorResponse(http.StatusRequestEntityTooLarge, ErrBodyTooLarge.Error())
}

func TooManyRequestsError() *ResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later")
}
