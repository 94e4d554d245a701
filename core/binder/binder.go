// Package binder parses request payloads into Go structs.
//
// All API payloads are JSON, so the package exposes a single JSON binder with
// a body size limit and strict trailing-data rejection. Binding failures wrap
// sentinel errors; handlers translate them into a generic 400 response
// without echoing decoder internals to the client.
package binder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultMaxJSONSize is the maximum accepted JSON request body (1MB).
const DefaultMaxJSONSize = 1 << 20

var (
	// ErrUnsupportedMediaType indicates a Content-Type other than
	// application/json on a body-carrying request.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrFailedToParseJSON indicates the body is not valid JSON or does not
	// match the target struct.
	ErrFailedToParseJSON = errors.New("failed to parse JSON request body")

	// ErrBodyTooLarge indicates the body exceeds DefaultMaxJSONSize.
	ErrBodyTooLarge = errors.New("request body too large")
)

// JSON decodes the request body into v.
//
// A missing Content-Type is tolerated when a body is present, but a
// conflicting one is rejected. Unknown fields are ignored so clients can
// evolve independently of the server.
func JSON(r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType := ct
		if idx := strings.Index(ct, ";"); idx != -1 {
			mediaType = strings.TrimSpace(ct[:idx])
		}
		if mediaType != "application/json" {
			return fmt.Errorf("%w: got %s, expected application/json", ErrUnsupportedMediaType, mediaType)
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, DefaultMaxJSONSize+1))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrFailedToParseJSON, err)
	}
	if len(body) > DefaultMaxJSONSize {
		return fmt.Errorf("%w: max %d bytes", ErrBodyTooLarge, DefaultMaxJSONSize)
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: empty body", ErrFailedToParseJSON)
	}

	decoder := json.NewDecoder(strings.NewReader(string(body)))
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToParseJSON, err)
	}

	// Reject trailing data after the JSON document.
	var extra json.RawMessage
	if err := decoder.Decode(&extra); err != io.EOF {
		return fmt.Errorf("%w: unexpected data after JSON document", ErrFailedToParseJSON)
	}

	return nil
}
