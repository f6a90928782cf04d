// Package http provides HTTP server and handler implementations.
//
// This file implements parsing of transaction input. The same fields are
// accepted as a JSON object or as form-encoded data.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

const maxBodyBytes = 1 << 20

// errMalformedBody reports a body that is neither JSON nor form data.
var errMalformedBody = errors.New("malformed request body")

// RequestBodyParser reads a request body once and serves string fields from
// it regardless of encoding.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads r's body. A body over 1 MiB makes Parse
// return *http.MaxBytesError.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body as JSON when it starts with '{' and as form data
// otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		dec := json.NewDecoder(strings.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = errMalformedBody
		}
		return p.err
	}
	if trimmed[0] == '[' {
		p.err = errMalformedBody
		return p.err
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	if p.err != nil {
		p.err = errMalformedBody
	}
	return p.err
}

// Get returns the trimmed, sanitized value for key from JSON or form data.
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

// sanitizeInput drops control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// ParseNewTransaction builds the insert input from kind, category, amount and
// date fields. A missing date means today. The first invalid field is
// returned as a *core.ValidationError.
func ParseNewTransaction(p *RequestBodyParser, today time.Time) (core.NewTransaction, error) {
	kind, err := core.ParseKind(p.Get("kind"))
	if err != nil {
		return core.NewTransaction{}, err
	}

	category := p.Get("category")
	if category == "" {
		return core.NewTransaction{}, &core.ValidationError{Field: "category", Err: core.ErrEmptyCategory}
	}

	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return core.NewTransaction{}, err
	}

	date := core.DateOf(today)
	if raw := p.Get("date"); raw != "" {
		if date, err = core.ParseDate(raw); err != nil {
			return core.NewTransaction{}, err
		}
	}

	n := core.NewTransaction{
		Kind:     kind,
		Category: category,
		Amount:   amount,
		Date:     date,
	}
	if err := n.Validate(); err != nil {
		return core.NewTransaction{}, err
	}
	return n, nil
}

// parseID reads a positive transaction id from a path value.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
