// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// the expansion state carried by HTMX requests and the expense create body.

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

	"weekspend/internal/core"
	"weekspend/internal/weekly"
)

// ErrBodyTooLarge is returned when a request body exceeds maxBodyBytes.
var ErrBodyTooLarge = errors.New("request body too large")

// ParseExpansion reads the expansion state from the repeated "expanded"
// parameter. Each value is one category name, commas included.
func ParseExpansion(values url.Values) weekly.Expansion {
	var names []string
	for _, v := range values["expanded"] {
		if n := sanitizeInput(v); n != "" {
			names = append(names, n)
		}
	}
	return weekly.ExpansionFrom(names)
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads at most maxBodyBytes of the request body.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = ErrBodyTooLarge
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

	if trimmed[0] == '{' || trimmed[0] == '[' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = fmt.Errorf("decode json: %w", err)
			return p.err
		}
		if p.jsonData == nil {
			p.err = errors.New("decode json: expected an object")
		}
		return p.err
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Values returns every value for key. JSON arrays of strings and repeated
// form fields are both supported.
func (p *RequestBodyParser) Values(key string) []string {
	if p.jsonData != nil {
		switch v := p.jsonData[key].(type) {
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				out = append(out, stringValue(item))
			}
			return out
		case nil:
			return nil
		default:
			return []string{stringValue(v)}
		}
	}
	if p.formData != nil {
		return p.formData[key]
	}
	return nil
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
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ExpenseFromBody maps a parsed create request onto an expense. Amounts may
// be JSON numbers or strings with either decimal separator. An empty date
// becomes today.
func ExpenseFromBody(p *RequestBodyParser, today string) (core.Expense, error) {
	cents, err := core.ParseDecimalToCents(p.Get("amount"))
	if err != nil {
		return core.Expense{}, err
	}
	date := p.Get("date")
	if date == "" {
		date = today
	}
	return core.Expense{
		ID:      p.Get("id"),
		Date:    date,
		Amount:  core.Money{Cents: cents},
		Comment: p.Get("comment"),
		Category: core.Category{
			ID:   p.Get("category_id"),
			Name: p.Get("category"),
		},
	}, nil
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}
