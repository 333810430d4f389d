package httpx

import (
	"encoding/json"
	"net/http"
)

// Issue is one field-level validation problem. Path addresses the offending
// field from the request root, e.g. ["quantity"].
type Issue struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

// ErrorBody is the shape of every non-2xx JSON response.
type ErrorBody struct {
	Message string  `json:"message"`
	Issues  []Issue `json:"issues,omitempty"`
} // @name ErrorBody

// MsgInternal is the only message a client ever sees for a 5xx.
const MsgInternal = "Internal server error"

// JSON writes v as JSON with the given status code. Content-Type and
// X-Content-Type-Options headers are set automatically. Encoding errors are
// silently discarded; use this for handler responses, not for streaming.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError writes a standard {"message": message} JSON response.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Message: message})
}

// JSONIssues writes {"message": message, "issues": [...]}.
func JSONIssues(w http.ResponseWriter, status int, message string, issues []Issue) {
	JSON(w, status, ErrorBody{Message: message, Issues: issues})
}

// MsgTooManyRequests is sent with every 429.
const MsgTooManyRequests = "Too many requests"

// TooManyRequests is the limit handler for httprate limiters.
func TooManyRequests(w http.ResponseWriter, _ *http.Request) {
	JSONError(w, http.StatusTooManyRequests, MsgTooManyRequests)
}

// SafeError returns the error message for client responses.
// Internal server errors (5xx) are always replaced with a generic message;
// their detail belongs in the server log only.
func SafeError(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return MsgInternal
	}
	return err.Error()
}
