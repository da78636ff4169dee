package apierr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"slices"
	"strings"
)

// Failure is the raw shape of a failed call as seen by the transport.
type Failure struct {
	// StatusCode is the HTTP status of the response, 0 when none was received.
	StatusCode int
	// Body is the raw response body, if any.
	Body []byte
	// Err is the transport, construction or decoding error, if any.
	Err error
	// Sent reports whether the request was handed to the wire.
	Sent bool
}

// Normalizer classifies failures. It holds no state besides its message set
// and is safe for concurrent use.
type Normalizer struct {
	messages Messages
}

// NewNormalizer creates a normalizer using m, falling back to English for
// any empty message.
func NewNormalizer(m Messages) *Normalizer {
	return &Normalizer{messages: m.withDefaults()}
}

var defaultNormalizer = NewNormalizer(DefaultMessages())

// Normalize classifies f with the English message set.
func Normalize(f Failure) *Error {
	return defaultNormalizer.Normalize(f)
}

// Messages returns the message set in use.
func (n *Normalizer) Messages() Messages {
	if n == nil {
		return defaultNormalizer.messages
	}
	return n.messages
}

// Normalize produces exactly one Error for f. Rules are applied in order and
// the first match wins:
//
//  1. response body with an "error" field
//  2. response body with a "detail" field
//  3. plain string response body
//  4. no response, client-side timeout
//  5. no response, any other transport failure
//  6. anything else (the request never reached the wire)
//
// Responses matching none of 1-3 still produce an ApplicationError, with
// field validation errors flattened or a status based message.
func (n *Normalizer) Normalize(f Failure) *Error {
	if n == nil {
		n = defaultNormalizer
	}
	if e, ok := As(f.Err); ok {
		return e
	}
	m := n.messages

	if f.StatusCode != 0 {
		return n.fromResponse(f)
	}

	if f.Sent {
		switch {
		case isTimeout(f.Err):
			return &Error{Kind: KindTimeout, Message: m.Timeout, Cause: f.Err}
		case errors.Is(f.Err, context.Canceled):
			return &Error{Kind: KindNetworkUnreachable, Message: m.Canceled, Cause: f.Err}
		default:
			return &Error{Kind: KindNetworkUnreachable, Message: m.NetworkUnreachable, Cause: f.Err}
		}
	}

	msg := m.RequestConfiguration
	if f.Err != nil && strings.TrimSpace(f.Err.Error()) != "" {
		msg = f.Err.Error()
	}
	return &Error{Kind: KindRequestConfiguration, Message: msg, Cause: f.Err}
}

func (n *Normalizer) fromResponse(f Failure) *Error {
	m := n.messages
	e := &Error{Kind: KindApplication, HTTPStatus: f.StatusCode, Cause: f.Err}

	if errors.Is(f.Err, ErrSessionMismatch) {
		e.Kind = KindAuthorization
		e.Message = m.SessionMismatch
		return e
	}

	// A success status with an error attached means the envelope was bad.
	if f.StatusCode >= 200 && f.StatusCode < 300 && f.Err != nil {
		e.Message = m.InvalidResponse
		return e
	}

	if msg, ok := bodyMessage(f.Body); ok {
		e.Message = msg
		return e
	}
	e.Message = m.status(f.StatusCode)
	return e
}

// bodyMessage extracts a human-readable message from an error response body.
func bodyMessage(body []byte) (string, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "", false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err == nil {
		if msg := textOf(obj["error"]); msg != "" {
			return msg, true
		}
		if msg := textOf(obj["detail"]); msg != "" {
			return msg, true
		}
		return fieldErrors(obj)
	}

	if msg := textOf(body); msg != "" {
		return msg, true
	}

	// Non-JSON text. Markup pages from proxies are not a readable message.
	if json.Valid(body) || body[0] == '<' {
		return "", false
	}
	return string(body), true
}

// textOf reads a JSON value that is a string or a list of strings.
func textOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.TrimSpace(strings.Join(list, " "))
	}
	return ""
}

// fieldErrors flattens a validation body such as {"photo": ["required"]}
// into "photo: required".
func fieldErrors(obj map[string]json.RawMessage) (string, bool) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var parts []string
	for _, k := range keys {
		msg := textOf(obj[k])
		if msg == "" {
			continue
		}
		if k == "non_field_errors" {
			parts = append(parts, msg)
			continue
		}
		parts = append(parts, k+": "+msg)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "; "), true
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
