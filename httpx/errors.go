package httpx

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Error is a non-2xx response from the API. Detail carries FastAPI's
// "detail" field (validation arrays are joined), Message the optional
// "message" field.
type Error struct {
	Status  int
	Detail  string
	Message string
	Body    []byte
}

func (e *Error) Error() string {
	if text := e.Text(); text != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), text)
	}
	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}

// Text is the most specific human readable message sent by the server.
func (e *Error) Text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Detail
}

// Contains reports whether the server's message mentions any of the phrases.
func (e *Error) Contains(phrases ...string) bool {
	text := e.Text()
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 0 for transport failures.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// AsError unwraps err to an API error.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type validationItem struct {
	Msg string `json:"msg"`
}

// ReadError consumes a failed response body and turns it into an *Error.
func ReadError(resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return ParseError(resp.StatusCode, body)
}

func ParseError(status int, body []byte) *Error {
	e := &Error{Status: status, Body: body}

	var eb errorBody
	if json.Unmarshal(body, &eb) != nil {
		// plain text bodies from proxies; long ones are HTML pages
		if text := strings.TrimSpace(string(body)); len(text) <= 200 {
			e.Detail = text
		}
		return e
	}
	e.Message = eb.Message

	raw := bytes.TrimSpace(eb.Detail)
	switch {
	case len(raw) == 0 || string(raw) == "null":
	case raw[0] == '"':
		_ = json.Unmarshal(raw, &e.Detail)
	case raw[0] == '[':
		var items []validationItem
		if json.Unmarshal(raw, &items) == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				msgs = append(msgs, it.Msg)
			}
			e.Detail = strings.Join(msgs, ", ")
		}
	default:
		e.Detail = string(raw)
	}
	return e
}
