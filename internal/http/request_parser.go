// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// transaction bodies in JSON or form encoding and the table filter query.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tracker/internal/core"
	"tracker/internal/query"
)

// maxBodyBytes caps request bodies; a transaction is a handful of short fields.
const maxBodyBytes = 64 << 10

// ErrBodyTooLarge is returned for bodies over maxBodyBytes. They are rejected
// whole rather than truncated.
var ErrBodyTooLarge = errors.New("request body too large")

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.body, p.err = nil, ErrBodyTooLarge
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	return sanitizeInput(p.Raw(key))
}

// Raw returns the value exactly as sent, for free-text fields.
func (p *RequestBodyParser) Raw(key string) string {
	if p.jsonData != nil {
		return stringValue(p.jsonData[key])
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseDraft runs the entry form's presence checks over a parsed body. The
// type defaults to expense; amount, category and date are required.
func ParseDraft(p *RequestBodyParser) (core.Draft, error) {
	if err := p.Parse(); err != nil {
		return core.Draft{}, fmt.Errorf("malformed body: %w", err)
	}

	draft := core.Draft{Type: core.Expense, Notes: p.Raw("notes")}

	if v := p.Get("type"); v != "" {
		typ, err := core.ParseTransactionType(v)
		if err != nil {
			return core.Draft{}, err
		}
		draft.Type = typ
	}

	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return core.Draft{}, err
	}
	draft.Amount = amount

	draft.Category = p.Get("category")
	if draft.Category == "" {
		return core.Draft{}, core.ErrMissingCategory
	}

	date, err := core.ParseDate(p.Get("date"))
	if err != nil {
		return core.Draft{}, err
	}
	draft.Date = date

	return draft, draft.Validate()
}

// ParseFilter reads type, category and q from the query string.
func ParseFilter(values url.Values) (query.Filter, error) {
	typ, err := query.ParseTypeFilter(values.Get("type"))
	if err != nil {
		return query.Filter{}, err
	}
	category := strings.TrimSpace(values.Get("category"))
	if category == "" {
		category = query.All
	}
	return query.Filter{
		Type:     typ,
		Category: category,
		Search:   values.Get("q"),
	}, nil
}
