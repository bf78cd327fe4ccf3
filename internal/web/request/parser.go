// Package request decodes request bodies and path segments.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mongoose-kitchen/mongoose/internal/orm/schema"
)

var (
	// ErrEmptyBody is returned when a request carries no JSON document
	ErrEmptyBody = errors.New("No JSON supplied")

	// ErrMalformedBody is returned when the body is not the expected JSON shape
	ErrMalformedBody = errors.New("malformed request body")
)

// Parser handles parsing of HTTP request bodies
type Parser struct {
	maxBodySize int64 // Maximum size for request bodies (in bytes)
}

// NewParser creates a new request parser with default settings
func NewParser() *Parser {
	return &Parser{
		maxBodySize: 10 << 20, // 10MB default
	}
}

// NewParserWithMaxSize creates a parser with a custom max body size
func NewParserWithMaxSize(maxBytes int64) *Parser {
	return &Parser{
		maxBodySize: maxBytes,
	}
}

// ParseObject decodes the body as one JSON object. An empty body, or a
// literal null, yields ErrEmptyBody.
func (p *Parser) ParseObject(w http.ResponseWriter, r *http.Request) (map[string]interface{}, error) {
	if r.Body == nil {
		return nil, ErrEmptyBody
	}
	r.Body = http.MaxBytesReader(w, r.Body, p.maxBodySize)
	defer r.Body.Close()

	var body map[string]interface{}
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyBody
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: request body exceeds %d bytes", ErrMalformedBody, tooLarge.Limit)
		}
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedBody, err)
	}
	if body == nil {
		return nil, ErrEmptyBody
	}

	// Check if there's additional data after the JSON object
	if decoder.More() {
		return nil, fmt.Errorf("%w: multiple JSON objects", ErrMalformedBody)
	}
	return body, nil
}

// Items returns the list of objects stored under key in body
func Items(body map[string]interface{}, key string) ([]map[string]interface{}, error) {
	raw, ok := body[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q list", ErrMalformedBody, key)
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %q must be a list", ErrMalformedBody, key)
	}

	items := make([]map[string]interface{}, len(list))
	for i, v := range list {
		item, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %q item %d must be an object", ErrMalformedBody, key, i)
		}
		items[i] = item
	}
	return items, nil
}

// GetParam returns a path parameter from the route
func GetParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// Ref is a path segment that names a row either by id or by name
type Ref struct {
	ID    int64
	Name  string
	IsID  bool
	Value string
}

// ParseRef classifies a path segment: one that parses as an integer is an
// id, anything else is a name
func ParseRef(segment string) Ref {
	segment = strings.TrimSpace(segment)
	if id, err := strconv.ParseInt(segment, 10, 64); err == nil {
		return Ref{ID: id, IsID: true, Value: segment}
	}
	return Ref{Name: segment, Value: segment}
}

// DateParam parses the named path parameter as YYYY-MM-DD
func DateParam(r *http.Request, name string) (time.Time, error) {
	return schema.ParseDate(GetParam(r, name))
}
