package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport marks failures where no usable response came back.
var ErrTransport = errors.New("transport failure")

// Error is a non-2xx response. Message is the server's own text, when it sent one.
type Error struct {
	Status  int
	Message string
	Code    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server responded %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server responded %d %s", e.Status, http.StatusText(e.Status))
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func newError(status int, data []byte) *Error {
	e := &Error{Status: status}
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		e.Message = body.Message
		if e.Message == "" {
			e.Message = body.Error
		}
		e.Code = body.Code
	}
	return e
}

// UserMessage returns the server-reported message carried by err, or fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
