package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/niliflix/internal/shared"
)

// APIError is a failed catalog call.
type APIError struct {
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	// Message is the server's explanation, or a description of the local failure.
	Message string
	// Kind is one of the shared sentinel errors.
	Kind error
	// Err is the underlying transport or decode error, if any.
	Err error
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsAPIError checks if an error is an [APIError] and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// endpoint groups operations that share a status mapping.
type endpoint int

const (
	protected endpoint = iota
	registration
	login
)

// classify maps a non-2xx status to an error kind.
func classify(ep endpoint, status int) error {
	switch ep {
	case registration:
		switch status {
		case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
			return shared.ErrValidationFailed
		}
	case login:
		switch status {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return shared.ErrAuthenticationFailed
		}
	default:
		switch status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return shared.ErrUnauthenticated
		case http.StatusNotFound:
			return shared.ErrNotFound
		case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
			return shared.ErrValidationFailed
		}
	}
	return shared.ErrServerError
}

// parseError builds an [APIError] from an error response.
//
// The API answers with plain text, {"message": ...}, or a validator payload of the form {"errors": [{"msg": ...}]}.
func parseError(ep endpoint, status int, body []byte) *APIError {
	return &APIError{StatusCode: status, Kind: classify(ep, status), Message: errorMessage(status, body)}
}

func errorMessage(status int, body []byte) string {
	var structured struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Errors  []struct {
			Msg   string `json:"msg"`
			Param string `json:"param"`
			Path  string `json:"path"`
		} `json:"errors"`
	}

	if err := json.Unmarshal(body, &structured); err == nil {
		switch {
		case structured.Message != "":
			return structured.Message
		case structured.Error != "":
			return structured.Error
		case len(structured.Errors) > 0:
			msgs := make([]string, 0, len(structured.Errors))
			for _, e := range structured.Errors {
				field := e.Param
				if field == "" {
					field = e.Path
				}
				if field != "" {
					msgs = append(msgs, field+": "+e.Msg)
				} else {
					msgs = append(msgs, e.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}

	var text string
	if err := json.Unmarshal(body, &text); err == nil && text != "" {
		return text
	}

	text = strings.TrimSpace(string(body))
	if text == "" {
		return http.StatusText(status)
	}
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}
