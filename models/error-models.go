package backoffice_integration_models

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError is a single field-level validation failure reported by the
// backend, e.g. {path: "items[0].amount", message: "..."}.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// APIError is the one error shape every non-2xx response is funneled into.
// Callers must not assume any other error shape from the client services.
type APIError struct {
	Status  int          `json:"status"`
	Code    string       `json:"code,omitempty"`
	Message string       `json:"message"`
	TraceID string       `json:"traceId,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// AsAPIError walks the error chain looking for an APIError. This is the type
// guard equivalent: a hit guarantees both a status and a message are present.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr != nil && apiErr.Status != 0 {
		return apiErr, true
	}
	return nil, false
}

func IsAPIError(err error) bool {
	_, ok := AsAPIError(err)
	return ok
}

// NormalizeFieldPath converts bracket indexing to dotted form so that
// "items[0].amount" and "items.0.amount" address the same form field.
func NormalizeFieldPath(path string) string {
	replacer := strings.NewReplacer("[", ".", "]", "")
	return strings.Trim(replacer.Replace(path), ".")
}

// FieldErrorMap flattens Details into a path -> message lookup keyed by the
// normalized path. The first message per path wins.
func (e *APIError) FieldErrorMap() map[string]string {
	if len(e.Details) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.Details))
	for _, d := range e.Details {
		key := NormalizeFieldPath(d.Path)
		if _, exists := out[key]; !exists {
			out[key] = d.Message
		}
	}
	return out
}
