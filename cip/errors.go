package cip

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrIncompatibleServer is returned by CheckCompatibility when the server
// reports a CIP version other than ServerVersion.
var ErrIncompatibleServer = errors.New("incompatible CIP server")

// ServerError is returned for responses with an HTTP status of 400 or above.
type ServerError struct {
	StatusCode int
	Message    string   // "message" from the JSON error body
	Stacktrace []string // "exception.stacktrace" from the JSON error body
	Body       []byte

	decoded bool
}

func newServerError(status int, body []byte) *ServerError {
	e := &ServerError{StatusCode: status, Body: body}

	var payload struct {
		Message   string `json:"message"`
		Exception struct {
			Stacktrace []string `json:"stacktrace"`
		} `json:"exception"`
	}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		e.decoded = true
		e.Message = payload.Message
		e.Stacktrace = payload.Exception.Stacktrace
	}
	return e
}

func (e *ServerError) Error() string {
	var b strings.Builder
	b.WriteString("CIP Error")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	switch {
	case e.decoded && e.Message != "":
		b.WriteString(": " + e.Message + ".")
	case !e.decoded && len(e.Body) > 0:
		b.WriteString(": " + strings.TrimSpace(string(e.Body)))
	default:
		b.WriteString(".")
	}
	return b.String()
}

// RemoteTrace renders the server-side stack trace, one numbered frame per
// line. It returns "" when the server sent none.
func (e *ServerError) RemoteTrace() string {
	if len(e.Stacktrace) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Serverside stack:\n")
	for i, frame := range e.Stacktrace {
		fmt.Fprintf(&b, "#%d %s\n", i, frame)
	}
	return b.String()
}
