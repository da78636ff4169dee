package apierr

import (
	"fmt"
	"net/http"
)

// Messages holds the fixed human-readable texts used when the failure itself
// carries no usable message.
type Messages struct {
	Timeout              string `yaml:"timeout"`
	NetworkUnreachable   string `yaml:"network_unreachable"`
	Canceled             string `yaml:"canceled"`
	RequestConfiguration string `yaml:"request_configuration"`
	InvalidResponse      string `yaml:"invalid_response"`
	SessionMismatch      string `yaml:"session_mismatch"`
	// Status is a format string taking the status code and status text.
	Status string `yaml:"status"`
}

// DefaultMessages returns the English message set.
func DefaultMessages() Messages {
	return Messages{
		Timeout:              "The request timed out. Make sure your network is stable and try again.",
		NetworkUnreachable:   "Could not reach the server. Check your network connection and try again.",
		Canceled:             "The request was cancelled before the server answered.",
		RequestConfiguration: "The request could not be prepared.",
		InvalidResponse:      "The server returned a response that could not be understood.",
		SessionMismatch:      "This comparison does not belong to your session.",
		Status:               "The server rejected the request (%d %s).",
	}
}

// withDefaults fills empty fields from DefaultMessages so no path can produce
// an empty message.
func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	if m.Timeout == "" {
		m.Timeout = d.Timeout
	}
	if m.NetworkUnreachable == "" {
		m.NetworkUnreachable = d.NetworkUnreachable
	}
	if m.Canceled == "" {
		m.Canceled = d.Canceled
	}
	if m.RequestConfiguration == "" {
		m.RequestConfiguration = d.RequestConfiguration
	}
	if m.InvalidResponse == "" {
		m.InvalidResponse = d.InvalidResponse
	}
	if m.SessionMismatch == "" {
		m.SessionMismatch = d.SessionMismatch
	}
	if m.Status == "" {
		m.Status = d.Status
	}
	return m
}

func (m Messages) status(code int) string {
	text := http.StatusText(code)
	if text == "" {
		text = "Unknown Status"
	}
	return fmt.Sprintf(m.Status, code, text)
}
