package api

import (
	"encoding/json"
	"net/http"
	"sort"

	"go.uber.org/zap"
)

const (
	ErrNotFound        = "The specified resource does not exist."
	ErrUnauthorized    = "Invalid access token."
	ErrInvalidUserID   = "user_id is required"
	ErrSelfReview      = "a user cannot review their own submission"
	ErrAlreadyAssigned = "peer review already assigned"
)

type ErrorMessage struct {
	Message string `json:"message"`
}

type errorPayload struct {
	Errors []ErrorMessage `json:"errors"`
}

// WriteApiError writes an error body in the platform's own format:
// {"errors":[{"message":"..."}]}.
func WriteApiError(w http.ResponseWriter, logger *zap.Logger, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	e := errorPayload{Errors: []ErrorMessage{{Message: message}}}

	err := json.NewEncoder(w).Encode(e)
	if err != nil {
		logger.Error("WriteApiError: failed to encode response", zap.Error(err))
	}
}

// ParseErrors extracts the first message of an "errors" field. The platform
// sends it as a list of objects, an object of lists, or a bare string.
func ParseErrors(raw json.RawMessage) string {
	var list []ErrorMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, e := range list {
			if e.Message != "" {
				return e.Message
			}
		}
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var byField map[string][]ErrorMessage
	if err := json.Unmarshal(raw, &byField); err == nil {
		fields := make([]string, 0, len(byField))
		for field := range byField {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		for _, field := range fields {
			for _, e := range byField[field] {
				if e.Message != "" {
					return field + ": " + e.Message
				}
			}
		}
	}

	return ""
}
