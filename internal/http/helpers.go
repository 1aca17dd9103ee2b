package http

import (
	"errors"
	"net/http"
	"strings"

	"tracker/internal/core"
)

// sanitizeInput drops control characters other than tab and newlines, and trims.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

var validationErrors = []error{
	core.ErrInvalidType,
	core.ErrInvalidAmount,
	core.ErrInvalidDate,
	core.ErrInvalidTheme,
	core.ErrMissingAmount,
	core.ErrMissingCategory,
	core.ErrMissingDate,
}

// errorStatus maps domain validation errors to 422, oversized bodies to 413 and
// anything else to 400.
func errorStatus(err error) int {
	if errors.Is(err, ErrBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusBadRequest
}

// errorResponse renders err with the status errorStatus picks for it.
func errorResponse(err error) *ResponseBuilder {
	switch errorStatus(err) {
	case http.StatusUnprocessableEntity:
		return UnprocessableEntityError(err.Error())
	case http.StatusRequestEntityTooLarge:
		return PayloadTooLargeError()
	default:
		return BadRequestError(err.Error())
	}
}
