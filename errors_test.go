package transmission

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      ErrorCode
		permanent bool
	}{
		{"dns", &net.DNSError{Err: "no such host", Name: "seedbox.invalid"}, ErrorCodeDNS, true},
		{"deadline", context.DeadlineExceeded, ErrorCodeTimeout, false},
		{"canceled", context.Canceled, ErrorCodeTimeout, false},
		{"timeout text", errors.New("connection timeout"), ErrorCodeTimeout, false},
		{"deadline text", errors.New("deadline exceeded"), ErrorCodeTimeout, false},
		{"401 text", errors.New("401: Unauthorized"), ErrorCodeAuthFailure, true},
		{"auth text", errors.New("authentication failed"), ErrorCodeAuthFailure, true},
		{"bad username", errors.New("invalid username or password"), ErrorCodeAuthFailure, true},
		{"bad credentials", errors.New("invalid credentials provided"), ErrorCodeAuthFailure, true},
		{"certificate text", errors.New("certificate verify failed"), ErrorCodeSSLError, true},
		{"tls text", errors.New("tls: handshake failure"), ErrorCodeSSLError, true},
		{"x509 text", errors.New("x509: certificate signed by unknown authority"), ErrorCodeSSLError, true},
		{"tls verification", &tls.CertificateVerificationError{Err: errors.New("expired")}, ErrorCodeSSLError, true},
		{"refused text", errors.New("dial tcp: connection refused"), ErrorCodeConnectionRefused, false},
		{"refused op", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, ErrorCodeConnectionRefused, false},
		{"no route", &net.OpError{Op: "dial", Err: errors.New("no route to host")}, ErrorCodeNetworkUnreachable, false},
		{"malformed response", errors.New("malformed http response"), ErrorCodeHTTPSRequired, true},
		{"plain http to https", errors.New("http: server gave HTTP response to HTTPS client; first record does not look like a TLS handshake"), ErrorCodeHTTPSRequired, true},
		{"unmatched", errors.New("the daemon hummed a tune"), ErrorCodeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyError(tt.err)
			require.NotNil(t, result)
			assert.Equal(t, tt.code, result.Code)
			assert.Equal(t, tt.permanent, result.Permanent)
		})
	}
}

func TestClassifyErrorPassesClientErrorThrough(t *testing.T) {
	assert.Nil(t, ClassifyError(nil))

	original := NewClientError(ErrorCodeAuthFailure, "bad password", nil, true)
	result := ClassifyError(fmt.Errorf("session-get: %w", original))
	assert.Same(t, original, result)
}

func TestClassifyHTTPStatusCode(t *testing.T) {
	tests := []struct {
		status    int
		code      ErrorCode
		permanent bool
	}{
		{401, ErrorCodeAuthFailure, true},
		{403, ErrorCodeAuthFailure, true},
		{502, ErrorCodeBadGateway, false},
		{503, ErrorCodeServiceUnavailable, false},
		{504, ErrorCodeTimeout, false},
		{500, ErrorCodeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			result := classifyHTTPStatusCode(tt.status, "body")
			assert.Equal(t, tt.code, result.Code)
			assert.Equal(t, tt.permanent, result.Permanent)
		})
	}
}

func TestRetryableAndPermanent(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
		permanent bool
	}{
		{"nil", nil, false, false},
		{"timeout", errors.New("connection timeout"), true, false},
		{"auth", errors.New("401: Unauthorized"), false, true},
		{"refused", errors.New("connection refused"), true, false},
		{"dns", &net.DNSError{Err: "no such host", Name: "x"}, false, true},
		{"protocol violation", newProtocolViolationError(MethodTorrentGet, nil, "T0", 0), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryableError(tt.err))
			assert.Equal(t, tt.permanent, IsPermanentError(tt.err))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrorCodeNone, GetErrorCode(nil))
	assert.Equal(t, ErrorCodeTimeout, GetErrorCode(errors.New("connection timeout")))
	assert.Equal(t, ErrorCodeRPCFailure, GetErrorCode(NewClientError(ErrorCodeRPCFailure, "duplicate torrent", nil, true)))
}

func TestClientErrorMessage(t *testing.T) {
	assert.Equal(t, "AUTH_FAILURE: bad password", NewClientError(ErrorCodeAuthFailure, "bad password", nil, true).Error())

	wrapped := errors.New("read: reset by peer")
	err := NewClientError(ErrorCodeTimeout, "request failed", wrapped, false)
	assert.Equal(t, "TIMEOUT: request failed (read: reset by peer)", err.Error())
	assert.Same(t, wrapped, errors.Unwrap(err))

	daemonErr := newDaemonError(MethodTorrentGet, map[string]any{"fields": []string{"id"}}, 500, "boom")
	assert.Equal(t, "UNKNOWN: Request failed with status 500: boom [method=torrent-get]", daemonErr.Error())
	assert.Equal(t, KindDaemon, daemonErr.Kind)
	assert.Equal(t, 500, daemonErr.StatusCode)
	assert.Equal(t, "boom", daemonErr.Body)
}

func TestNoConnectionError(t *testing.T) {
	err := newNoConnectionError(MethodTorrentGet)

	assert.ErrorIs(t, err, ErrNoConnection)
	assert.Equal(t, KindNoConnection, GetErrorKind(err))
	assert.NotErrorIs(t, newDaemonError(MethodTorrentGet, nil, 500, ""), ErrNoConnection)
}

func TestTransportErrorKeepsClassification(t *testing.T) {
	opErr := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	err := newTransportError(MethodSessionGet, nil, opErr)

	assert.Equal(t, KindTransport, err.Kind)
	assert.Equal(t, ErrorCodeConnectionRefused, err.Code)
	assert.ErrorIs(t, err, opErr)
}

func TestProtocolViolationWrapsStaleToken(t *testing.T) {
	err := newProtocolViolationError(MethodTorrentGet, nil, "T0", 0)

	var stale *ClientError
	require.ErrorAs(t, err.Err, &stale)
	assert.Equal(t, KindStaleToken, stale.Kind)
	assert.Equal(t, KindProtocolViolation, err.Kind)
	assert.True(t, err.Permanent)
}

func TestGetErrorKind(t *testing.T) {
	assert.Equal(t, KindNone, GetErrorKind(nil))
	assert.Equal(t, KindNone, GetErrorKind(errors.New("plain")))
	assert.Equal(t, KindNoConnection, GetErrorKind(fmt.Errorf("load: %w", newNoConnectionError(""))))
}
