package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrTransport    = errors.New("could not reach the server")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// Error is a non-2xx answer from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

type errorPayload struct {
	Msg     string `json:"msg"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func newError(status int, body []byte) *Error {
	var p errorPayload
	if err := json.Unmarshal(body, &p); err == nil {
		for _, m := range []string{p.Msg, p.Message, p.Error} {
			if m = strings.TrimSpace(m); m != "" {
				return &Error{Status: status, Message: m}
			}
		}
	}
	return &Error{Status: status, Message: fallbackMessage(status)}
}

func fallbackMessage(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return "Your session has expired. Please sign in again."
	case status == http.StatusForbidden:
		return "You do not have access to this."
	case status == http.StatusNotFound:
		return "Not found."
	case status >= 500:
		return "The server failed to handle the request."
	default:
		return "Something went wrong."
	}
}

// Message is the text a user should see for err. Cancelled requests have
// no message.
func Message(err error) string {
	if err == nil || errors.Is(err, context.Canceled) {
		return ""
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	if errors.Is(err, ErrTransport) {
		return "Could not reach the server."
	}

	return err.Error()
}
