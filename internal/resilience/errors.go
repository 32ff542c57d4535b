package resilience

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// TransientError marks a failure worth another attempt: throttling, an
// upstream 5xx or a dropped connection.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError marks err as retryable. statusCode is zero for transport
// failures.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// StatusError is a non-200 response. When the body is a Places error payload
// its status and error_message are lifted out.
type StatusError struct {
	StatusCode int
	Status     string
	Message    string
	Body       string
}

func (e *StatusError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Message)
	case e.Status != "":
		return fmt.Sprintf("HTTP %d %s", e.StatusCode, e.Status)
	default:
		return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
	}
}

// retryableStatus lists the response codes that are retried.
var retryableStatus = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// IsTransientHTTPStatus reports whether a response code is retried.
func IsTransientHTTPStatus(statusCode int) bool {
	return retryableStatus[statusCode]
}

// ClassifyStatus turns a non-200 response into a StatusError, wrapped in a
// TransientError when the code is retryable.
func ClassifyStatus(statusCode int, body string) error {
	se := &StatusError{StatusCode: statusCode, Body: body}
	var payload struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
	}
	if json.Unmarshal([]byte(body), &payload) == nil {
		se.Status = payload.Status
		se.Message = payload.ErrorMessage
	}
	if IsTransientHTTPStatus(statusCode) {
		return NewTransientError(se, statusCode)
	}
	return se
}

// APIMessage returns the upstream error_message carried by err, falling back
// to the full error text.
func APIMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return err.Error()
}

// transportPatterns catch transport failures that arrive flattened to text.
var transportPatterns = []string{
	"connection reset by peer",
	"connection refused",
	"broken pipe",
	"no such host",
	"temporary failure in name resolution",
	"tls handshake timeout",
	"i/o timeout",
	"unexpected eof",
	"server closed idle connection",
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	for _, errno := range []error{syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ECONNABORTED} {
		if errors.Is(err, errno) {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transportPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
