package platform

import (
	"errors"
	"net/http"

	"github.com/mmcdole/marquee/internal/domain"
)

// Wire types shared by the helper and its desktop client

const requestIDHeader = "X-Request-ID"

type healthResponse struct {
	Version string `json:"version"`
	Cloud   bool   `json:"cloud"`
}

type fetchRequest struct {
	URL    string      `json:"url"`
	Header http.Header `json:"header,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// errorCodes maps sentinels to stable wire codes and statuses
var errorCodes = []struct {
	err    error
	code   string
	status int
}{
	{domain.ErrNotConfigured, "not_configured", http.StatusServiceUnavailable},
	{domain.ErrServerOffline, "offline", http.StatusBadGateway},
	{domain.ErrNotFound, "not_found", http.StatusNotFound},
	{domain.ErrNoStream, "no_stream", http.StatusNotFound},
	{domain.ErrAuthFailed, "auth_failed", http.StatusUnauthorized},
}

// encodeError returns the wire code and status for err
func encodeError(err error) (string, int) {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code, ec.status
		}
	}
	return "internal", http.StatusInternalServerError
}

// decodeError turns a wire error back into an error wrapping its sentinel
func decodeError(body errorBody, status int) error {
	for _, ec := range errorCodes {
		if ec.code == body.Code {
			if body.Error == "" || body.Error == ec.err.Error() {
				return ec.err
			}
			return &remoteError{msg: body.Error, sentinel: ec.err}
		}
	}
	if body.Error == "" {
		return &remoteError{msg: http.StatusText(status)}
	}
	return &remoteError{msg: body.Error}
}

// remoteError carries the helper's message while matching its sentinel
type remoteError struct {
	msg      string
	sentinel error
}

func (e *remoteError) Error() string { return "helper: " + e.msg }

func (e *remoteError) Unwrap() error { return e.sentinel }
