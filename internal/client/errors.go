package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrTransport marks failures where no usable response was received.
var ErrTransport = errors.New("transport error")

var ErrMissingBaseURL = errors.New("backend base url is required")

// APIError is a non-2xx backend response. Message is the backend's own
// human-readable message, suitable for display as-is.
type APIError struct {
	Status  int    `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// StatusCode extracts the backend status from err, or 0 when err is not an
// APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var data any
	if err := json.Unmarshal(body, &data); err == nil {
		apiErr.Data = data
		apiErr.Message = extractMessage(data)
	} else if text := strings.TrimSpace(string(body)); text != "" {
		apiErr.Data = text
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// extractMessage reads "message" (string or list of strings) and then
// "error" from a JSON error body.
func extractMessage(data any) string {
	obj, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		switch m := obj[key].(type) {
		case string:
			if s := strings.TrimSpace(m); s != "" {
				return s
			}
		case []any:
			parts := make([]string, 0, len(m))
			for _, p := range m {
				if s, ok := p.(string); ok && strings.TrimSpace(s) != "" {
					parts = append(parts, strings.TrimSpace(s))
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		}
	}
	return ""
}
