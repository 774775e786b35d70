package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Kind classifies a client error
type Kind int

const (
	KindNetwork Kind = iota + 1 // the server was not reached
	KindHTTP                    // the server answered with a status outside 2xx
	KindDecode                  // the response body is not valid JSON (or does not fit the target type)
	KindRequest                 // the request could not be built (body encoding, token provider) - nothing was sent
)

var kindNames = map[Kind]string{
	KindNetwork: "network",
	KindHTTP:    "http",
	KindDecode:  "decode",
	KindRequest: "request",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the normalized error returned by every client call.
// StatusCode is 0 unless Kind is KindHTTP.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string // human readable - shown to end users as-is
	Body       []byte // raw response body, when one was received
	Err        error  // underlying cause for network, decode and request errors
}

func (e *Error) Error() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("siports api %s error (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("siports api %s error: %s", e.Kind, e.Message)
}

// UserError returns the message intended for display
func (e *Error) UserError() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewNetworkError wraps a transport failure; the message is the transport's own message
func NewNetworkError(err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: err.Error(),
		Err:     err,
	}
}

// NewHTTPError builds the error for a non-2xx response.
//
// The message is taken from the body's "detail" field, then its "error" field, and falls back to "<status> <status text>".
func NewHTTPError(statusCode int, status string, body []byte) *Error {
	return &Error{
		Kind:       KindHTTP,
		StatusCode: statusCode,
		Message:    errorMessage(statusCode, status, body),
		Body:       body,
	}
}

// NewDecodeError reports a success response whose body could not be parsed
func NewDecodeError(err error, body []byte) *Error {
	return &Error{
		Kind:    KindDecode,
		Message: fmt.Sprintf("invalid JSON in response body: %v", err),
		Body:    body,
		Err:     err,
	}
}

// NewRequestError reports a failure that happened before anything was sent - supply the error and what was being done when it occurred
func NewRequestError(err error, while string) *Error {
	return &Error{
		Kind:    KindRequest,
		Message: fmt.Sprintf("%v while %s", err, while),
		Err:     err,
	}
}

// AsError extracts a *Error from err's chain
func AsError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsKind reports whether err is a client error of the given kind
func IsKind(err error, kind Kind) bool {
	ce, ok := AsError(err)
	return ok && ce.Kind == kind
}

// IsUnauthorized reports whether the backend rejected the call's credentials (HTTP 401).
// Callers use this to discard a stored session.
func IsUnauthorized(err error) bool {
	ce, ok := AsError(err)
	return ok && ce.Kind == KindHTTP && ce.StatusCode == http.StatusUnauthorized
}

// IsForbidden reports whether the backend refused the call (HTTP 403)
func IsForbidden(err error) bool {
	ce, ok := AsError(err)
	return ok && ce.Kind == KindHTTP && ce.StatusCode == http.StatusForbidden
}

// UserMessage returns the display message for any error, client or not
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if ce, ok := AsError(err); ok {
		return ce.UserError()
	}
	return err.Error()
}

func errorMessage(statusCode int, status string, body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"detail", "error"} {
			if msg := fieldMessage(payload[key]); msg != "" {
				return msg
			}
		}
	}
	return statusLine(statusCode, status)
}

// fieldMessage renders a detail/error value: strings as-is, structured values (e.g validation error lists) as compact JSON
func fieldMessage(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		dat, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(dat)
	}
}

// statusLine returns "<status> <status text>", preferring the reason phrase the server sent
func statusLine(statusCode int, status string) string {
	code := strconv.Itoa(statusCode)
	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(status), code))
	if text == "" {
		text = http.StatusText(statusCode)
	}
	if text == "" {
		return code
	}
	return code + " " + text
}
