package apierr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestNormalize_ErrorField(t *testing.T) {
	e := Normalize(Failure{
		StatusCode: http.StatusBadRequest,
		Body:       []byte(`{"error": "X", "detail": "ignored"}`),
		Sent:       true,
	})

	assert.Equal(t, KindApplication, e.Kind)
	assert.Equal(t, "X", e.Message)
	code, ok := e.StatusCode()
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestNormalize_DetailField(t *testing.T) {
	e := Normalize(Failure{
		StatusCode: http.StatusUnauthorized,
		Body:       []byte(`{"detail": "Authentication credentials were not provided."}`),
		Sent:       true,
	})

	assert.Equal(t, KindApplication, e.Kind)
	assert.Equal(t, "Authentication credentials were not provided.", e.Message)
}

func TestNormalize_EmptyErrorFieldFallsThroughToDetail(t *testing.T) {
	e := Normalize(Failure{
		StatusCode: http.StatusBadRequest,
		Body:       []byte(`{"error": "", "detail": "use detail"}`),
		Sent:       true,
	})

	assert.Equal(t, "use detail", e.Message)
}

func TestNormalize_PlainStringBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"json string", `"quota exceeded"`, "quota exceeded"},
		{"raw text", "service unavailable, try later", "service unavailable, try later"},
		{"list of strings", `["first", "second"]`, "first second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Normalize(Failure{StatusCode: http.StatusServiceUnavailable, Body: []byte(tt.body), Sent: true})
			assert.Equal(t, KindApplication, e.Kind)
			assert.Equal(t, tt.want, e.Message)
		})
	}
}

func TestNormalize_FieldValidationErrors(t *testing.T) {
	e := Normalize(Failure{
		StatusCode: http.StatusBadRequest,
		Body:       []byte(`{"photo": ["No file was submitted."], "non_field_errors": ["Invalid upload."]}`),
		Sent:       true,
	})

	assert.Equal(t, KindApplication, e.Kind)
	assert.Equal(t, "Invalid upload.; photo: No file was submitted.", e.Message)
}

func TestNormalize_UnreadableBodyUsesStatus(t *testing.T) {
	for _, body := range []string{"", "<html><body>Bad Gateway</body></html>", `{"code": 12}`, "42"} {
		e := Normalize(Failure{StatusCode: http.StatusBadGateway, Body: []byte(body), Sent: true})
		assert.Equal(t, KindApplication, e.Kind, "body %q", body)
		assert.Equal(t, "The server rejected the request (502 Bad Gateway).", e.Message, "body %q", body)
	}
}

func TestNormalize_Timeout(t *testing.T) {
	errs := []error{
		&url.Error{Op: "Get", URL: "http://x/api/compare/", Err: timeoutError{}},
		fmt.Errorf("send: %w", context.DeadlineExceeded),
	}

	for _, err := range errs {
		e := Normalize(Failure{Err: err, Sent: true})
		assert.Equal(t, KindTimeout, e.Kind)
		assert.Equal(t, DefaultMessages().Timeout, e.Message)
		_, ok := e.StatusCode()
		assert.False(t, ok)
		assert.ErrorIs(t, e, ErrTimeout)
	}
}

func TestNormalize_NetworkUnreachable(t *testing.T) {
	err := &url.Error{
		Op:  "Post",
		URL: "http://localhost:1/api/compare/",
		Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
	}

	e := Normalize(Failure{Err: err, Sent: true})

	assert.Equal(t, KindNetworkUnreachable, e.Kind)
	assert.Equal(t, DefaultMessages().NetworkUnreachable, e.Message)
	assert.Equal(t, 0, e.HTTPStatus)
	assert.ErrorIs(t, e, ErrNetworkUnreachable)
	assert.ErrorIs(t, e, err.Err)
}

func TestNormalize_Canceled(t *testing.T) {
	e := Normalize(Failure{Err: context.Canceled, Sent: true})

	assert.Equal(t, KindNetworkUnreachable, e.Kind)
	assert.Equal(t, DefaultMessages().Canceled, e.Message)
}

func TestNormalize_RequestConfiguration(t *testing.T) {
	e := Normalize(Failure{Err: errors.New(`parse "::bad": missing protocol scheme`)})
	assert.Equal(t, KindRequestConfiguration, e.Kind)
	assert.Equal(t, `parse "::bad": missing protocol scheme`, e.Message)

	e = Normalize(Failure{})
	assert.Equal(t, KindRequestConfiguration, e.Kind)
	assert.NotEmpty(t, e.Message)
}

func TestNormalize_SessionMismatch(t *testing.T) {
	e := Normalize(Failure{StatusCode: http.StatusOK, Err: ErrSessionMismatch, Sent: true})

	assert.Equal(t, KindAuthorization, e.Kind)
	assert.ErrorIs(t, e, ErrAuthorization)
	assert.ErrorIs(t, e, ErrSessionMismatch)
}

func TestNormalize_InvalidEnvelope(t *testing.T) {
	e := Normalize(Failure{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"error": "not an error, just a field"}`),
		Err:        fmt.Errorf("%w: unknown state %q", ErrInvalidEnvelope, "SLEEPING"),
		Sent:       true,
	})

	assert.Equal(t, KindApplication, e.Kind)
	assert.Equal(t, DefaultMessages().InvalidResponse, e.Message)
}

func TestNormalize_AlreadyNormalized(t *testing.T) {
	orig := &Error{Kind: KindTimeout, Message: "slow"}

	e := Normalize(Failure{Err: fmt.Errorf("wrapped: %w", orig), Sent: true})

	assert.Same(t, orig, e)
}

func TestNormalizer_CustomMessages(t *testing.T) {
	n := NewNormalizer(Messages{Timeout: "上传超时，请确保网络稳定并重试"})

	e := n.Normalize(Failure{Err: context.DeadlineExceeded, Sent: true})
	assert.Equal(t, "上传超时，请确保网络稳定并重试", e.Message)

	// Missing entries fall back to English.
	e = n.Normalize(Failure{Err: errors.New("refused"), Sent: true})
	assert.Equal(t, DefaultMessages().NetworkUnreachable, e.Message)
}

func TestJobScoped(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound} {
		err := JobScoped(Normalize(Failure{StatusCode: code, Body: []byte(`{"error":"not found"}`), Sent: true}))
		require.Error(t, err)
		assert.Equal(t, KindAuthorization, KindOf(err), "status %d", code)
		assert.Equal(t, "not found", err.Error())
	}

	err := JobScoped(Normalize(Failure{StatusCode: http.StatusInternalServerError, Sent: true}))
	assert.Equal(t, KindApplication, KindOf(err))

	timeout := Normalize(Failure{Err: context.DeadlineExceeded, Sent: true})
	assert.Equal(t, KindTimeout, KindOf(JobScoped(timeout)))

	assert.NoError(t, JobScoped(nil))
}

func TestKindOf_NotNormalized(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}
