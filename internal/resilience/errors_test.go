package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"explicit", NewTransientError(errors.New("overloaded"), 503), true},
		{"wrapped with fmt", fmt.Errorf("text search: %w", NewTransientError(errors.New("rate limited"), 429)), true},
		{"wrapped with eris", eris.Wrap(NewTransientError(errors.New("rate limited"), 429), "google: send request"), true},
		{"plain", errors.New("invalid request: missing location"), false},
		{"conn reset", fmt.Errorf("read tcp: %w", syscall.ECONNRESET), true},
		{"conn refused", fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED), true},
		{"dns timeout", &net.DNSError{IsTimeout: true, Err: "timeout"}, true},
		{"flattened i/o timeout", errors.New("Get \"https://maps.googleapis.com\": i/o timeout"), true},
		{"flattened tls", errors.New("net/http: TLS handshake timeout"), true},
		{"permanent status", ClassifyStatus(403, `{"status":"REQUEST_DENIED"}`), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "HTTP %d", code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "HTTP %d", code)
	}
}

func TestClassifyStatus_PlacesPayload(t *testing.T) {
	err := ClassifyStatus(403, `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`)
	require.False(t, IsTransient(err))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 403, se.StatusCode)
	assert.Equal(t, "REQUEST_DENIED", se.Status)
	assert.Equal(t, "HTTP 403 REQUEST_DENIED: The provided API key is invalid.", se.Error())
	assert.Equal(t, "The provided API key is invalid.", APIMessage(eris.Wrap(err, "google: /textsearch/json")))
}

func TestClassifyStatus_TransientKeepsStatus(t *testing.T) {
	err := ClassifyStatus(503, "backend unavailable")
	require.True(t, IsTransient(err))

	var te *TransientError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 503, te.StatusCode)
	assert.Equal(t, "unexpected status 503: backend unavailable", te.Error())

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Empty(t, se.Status)
}

func TestAPIMessage_Fallback(t *testing.T) {
	assert.Empty(t, APIMessage(nil))
	assert.Equal(t, "boom", APIMessage(errors.New("boom")))
	assert.Equal(t, "HTTP 400 INVALID_REQUEST", APIMessage(ClassifyStatus(400, `{"status":"INVALID_REQUEST"}`)))
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("root cause")
	te := NewTransientError(inner, 500)

	assert.ErrorIs(t, te, inner)
	assert.Equal(t, "root cause", te.Error())
}
