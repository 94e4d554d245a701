package response

import (
	"encoding/json"
	"net/http"

	"github.com/plannerhq/planner/core/handler"
)

// ContentTypeJSON is set on every JSON response, success or failure.
const ContentTypeJSON = "application/json; charset=UTF-8"

// JSON creates an application/json response with 200 OK status.
// Encoding is performed directly to the response writer.
func JSON(v any) handler.Response {
	return JSONWithStatus(v, http.StatusOK)
}

// JSONWithStatus creates an application/json response with a custom status.
func JSONWithStatus(v any, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Content-Type", ContentTypeJSON)
		w.WriteHeader(status)
		if status == http.StatusNoContent || status == http.StatusNotModified {
			return nil
		}
		return json.NewEncoder(w).Encode(v)
	}
}

// NoContent creates an empty 204 response.
func NoContent() handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
}

// Error returns a handler response that propagates the given error to the
// router's error handler, the single projection site for the wire shape.
func Error(err error) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		return err
	}
}
