package transmission

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrNoConnection is reported, before any I/O, when the network checker
// says the daemon is unreachable.
var ErrNoConnection = errors.New("No connection")

// ErrorKind places an error in one of the failure paths of a call.
type ErrorKind string

const (
	KindNone ErrorKind = ""

	// KindNoConnection: the network checker reported offline, nothing was sent.
	KindNoConnection ErrorKind = "no_connection"

	// KindTransport: the request never produced an HTTP response.
	KindTransport ErrorKind = "transport"

	// KindStaleToken: the daemon answered 409. Only surfaced wrapped in a
	// protocol violation.
	KindStaleToken ErrorKind = "stale_token"

	// KindProtocolViolation: the daemon rejected a session id it had just issued.
	KindProtocolViolation ErrorKind = "protocol_violation"

	// KindDaemon: the daemon answered with a failure status or result.
	KindDaemon ErrorKind = "daemon"
)

// ErrorCode represents a specific error type for client-side handling
type ErrorCode string

const (
	// ErrorCodeNone indicates no error
	ErrorCodeNone ErrorCode = ""

	// ErrorCodeNoConnection indicates the network checker reported offline
	ErrorCodeNoConnection ErrorCode = "NO_CONNECTION"

	// ErrorCodeAuthFailure indicates invalid username/password - requires user intervention
	ErrorCodeAuthFailure ErrorCode = "AUTH_FAILURE"

	// ErrorCodeTimeout indicates connection or request timeout - temporary, can retry
	ErrorCodeTimeout ErrorCode = "TIMEOUT"

	// ErrorCodeDNS indicates DNS resolution failure - check hostname configuration
	ErrorCodeDNS ErrorCode = "DNS_ERROR"

	// ErrorCodeHTTPSRequired indicates HTTP was used but HTTPS is required
	ErrorCodeHTTPSRequired ErrorCode = "HTTPS_REQUIRED"

	// ErrorCodeSSLError indicates SSL/TLS certificate or connection error
	ErrorCodeSSLError ErrorCode = "SSL_ERROR"

	// ErrorCodeConnectionRefused indicates the server actively refused the connection
	ErrorCodeConnectionRefused ErrorCode = "CONNECTION_REFUSED"

	// ErrorCodeNetworkUnreachable indicates network routing issues
	ErrorCodeNetworkUnreachable ErrorCode = "NETWORK_UNREACHABLE"

	// ErrorCodeBadGateway indicates a proxy/gateway error (502)
	ErrorCodeBadGateway ErrorCode = "BAD_GATEWAY"

	// ErrorCodeServiceUnavailable indicates the service is temporarily unavailable (503)
	ErrorCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// ErrorCodeProtocolViolation indicates the daemon re-rejected a fresh session id
	ErrorCodeProtocolViolation ErrorCode = "PROTOCOL_VIOLATION"

	// ErrorCodeRPCFailure indicates a 2xx reply whose result was not "success"
	ErrorCodeRPCFailure ErrorCode = "RPC_FAILURE"

	// ErrorCodeDecode indicates the daemon reply was not valid JSON
	ErrorCodeDecode ErrorCode = "DECODE_ERROR"

	// ErrorCodeInvalidArgument indicates the call was rejected before any I/O
	ErrorCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrorCodeUnknown indicates an unclassified error
	ErrorCodeUnknown ErrorCode = "UNKNOWN"
)

// ClientError represents a structured error with classification
type ClientError struct {
	Kind    ErrorKind
	Code    ErrorCode
	Message string
	Err     error
	// Permanent indicates whether this error requires user intervention (true)
	// or can be resolved by retrying (false)
	Permanent bool

	// Diagnostic context of the failed call.
	Method     string
	Arguments  map[string]any
	StatusCode int
	Body       string
}

func (e *ClientError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Method != "" {
		msg = fmt.Sprintf("%s [method=%s]", msg, e.Method)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (%v)", msg, e.Err)
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNoConnection) match offline failures.
func (e *ClientError) Is(target error) bool {
	return target == ErrNoConnection && e.Kind == KindNoConnection
}

// IsPermanent returns true if the error requires user intervention
func (e *ClientError) IsPermanent() bool {
	return e.Permanent
}

// NewClientError creates a new ClientError
func NewClientError(code ErrorCode, message string, err error, permanent bool) *ClientError {
	return &ClientError{
		Code:      code,
		Message:   message,
		Err:       err,
		Permanent: permanent,
	}
}

func newNoConnectionError(method string) *ClientError {
	return &ClientError{
		Kind:    KindNoConnection,
		Code:    ErrorCodeNoConnection,
		Message: ErrNoConnection.Error(),
		Method:  method,
	}
}

func newTransportError(method string, args map[string]any, err error) *ClientError {
	classified := *ClassifyError(err)
	classified.Kind = KindTransport
	classified.Method = method
	classified.Arguments = args
	return &classified
}

func newDaemonError(method string, args map[string]any, statusCode int, body string) *ClientError {
	classified := classifyHTTPStatusCode(statusCode, body)
	classified.Kind = KindDaemon
	classified.Method = method
	classified.Arguments = args
	classified.StatusCode = statusCode
	classified.Body = body
	return classified
}

func newProtocolViolationError(method string, args map[string]any, token string, attempt int) *ClientError {
	stale := &ClientError{
		Kind:       KindStaleToken,
		Code:       ErrorCodeProtocolViolation,
		Message:    fmt.Sprintf("session id %q rejected with status 409", token),
		StatusCode: 409,
	}
	return &ClientError{
		Kind:       KindProtocolViolation,
		Code:       ErrorCodeProtocolViolation,
		Message:    fmt.Sprintf("daemon rejected a freshly issued session id (attempt %d)", attempt+1),
		Err:        stale,
		Permanent:  true,
		Method:     method,
		Arguments:  args,
		StatusCode: 409,
	}
}

func newRPCFailureError(method string, args map[string]any, result string) *ClientError {
	return &ClientError{
		Kind:      KindDaemon,
		Code:      ErrorCodeRPCFailure,
		Message:   fmt.Sprintf("daemon returned result %q", result),
		Permanent: true,
		Method:    method,
		Arguments: args,
	}
}

func newDecodeError(method string, body string, err error) *ClientError {
	return &ClientError{
		Kind:      KindDaemon,
		Code:      ErrorCodeDecode,
		Message:   "failed to decode daemon response",
		Err:       err,
		Permanent: true,
		Method:    method,
		Body:      body,
	}
}

func newInvalidArgumentError(method, message string, err error) *ClientError {
	return &ClientError{
		Code:      ErrorCodeInvalidArgument,
		Message:   message,
		Err:       err,
		Permanent: true,
		Method:    method,
	}
}

// ClassifyError analyzes an error and returns a structured ClientError
func ClassifyError(err error) *ClientError {
	if err == nil {
		return nil
	}

	// Already a ClientError
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr
	}

	errStr := err.Error()

	// DNS errors
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NewClientError(
			ErrorCodeDNS,
			fmt.Sprintf("Failed to resolve hostname: %s", dnsErr.Name),
			err,
			true,
		)
	}

	// Network operation errors (connection refused, timeout, etc.)
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return classifyOpError(opErr, err)
	}

	// URL errors
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return NewClientError(
				ErrorCodeTimeout,
				"Request timed out",
				err,
				false,
			)
		}
	}

	// TLS/SSL errors
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return NewClientError(
			ErrorCodeSSLError,
			"SSL certificate verification failed",
			err,
			true,
		)
	}

	return classifyByMessage(errStr, err)
}

// classifyOpError classifies net.OpError errors
func classifyOpError(opErr *net.OpError, originalErr error) *ClientError {
	if opErr.Op == "dial" {
		if strings.Contains(opErr.Error(), "connection refused") {
			return NewClientError(
				ErrorCodeConnectionRefused,
				"Connection refused - daemon may be down or port is incorrect",
				originalErr,
				false,
			)
		}

		if strings.Contains(opErr.Error(), "no route to host") ||
			strings.Contains(opErr.Error(), "network is unreachable") {
			return NewClientError(
				ErrorCodeNetworkUnreachable,
				"Network unreachable - check network connectivity",
				originalErr,
				false,
			)
		}
	}

	if opErr.Timeout() {
		return NewClientError(
			ErrorCodeTimeout,
			"Connection timed out",
			originalErr,
			false,
		)
	}

	return NewClientError(
		ErrorCodeUnknown,
		"Network operation failed",
		originalErr,
		false,
	)
}

// classifyByMessage classifies errors based on error message patterns
func classifyByMessage(errStr string, err error) *ClientError {
	lowerErr := strings.ToLower(errStr)

	if strings.Contains(lowerErr, "timeout") ||
		strings.Contains(lowerErr, "deadline exceeded") ||
		strings.Contains(lowerErr, "context canceled") {
		return NewClientError(
			ErrorCodeTimeout,
			"Request timed out",
			err,
			false,
		)
	}

	// HTTP/HTTPS mismatch
	if strings.Contains(lowerErr, "malformed http response") ||
		strings.Contains(lowerErr, "first record does not look like a tls handshake") {
		return NewClientError(
			ErrorCodeHTTPSRequired,
			"Protocol mismatch - check the https setting",
			err,
			true,
		)
	}

	if strings.Contains(lowerErr, "certificate") ||
		strings.Contains(lowerErr, "x509") ||
		strings.Contains(lowerErr, "tls") ||
		strings.Contains(lowerErr, "ssl") {
		return NewClientError(
			ErrorCodeSSLError,
			"SSL/TLS connection failed - check certificate configuration",
			err,
			true,
		)
	}

	if strings.Contains(lowerErr, "connection refused") {
		return NewClientError(
			ErrorCodeConnectionRefused,
			"Connection refused - daemon may be down",
			err,
			false,
		)
	}

	if strings.Contains(lowerErr, "no such host") ||
		strings.Contains(lowerErr, "lookup") ||
		strings.Contains(lowerErr, "dns") {
		return NewClientError(
			ErrorCodeDNS,
			"DNS resolution failed - check hostname",
			err,
			true,
		)
	}

	// Transmission answers bad credentials with "401: Unauthorized"
	if strings.Contains(lowerErr, "unauthorized") ||
		strings.Contains(lowerErr, "authentication failed") ||
		strings.Contains(lowerErr, "invalid username") ||
		strings.Contains(lowerErr, "invalid password") ||
		strings.Contains(lowerErr, "invalid credentials") {
		return NewClientError(
			ErrorCodeAuthFailure,
			"Invalid username or password",
			err,
			true,
		)
	}

	return NewClientError(
		ErrorCodeUnknown,
		"Unknown error occurred",
		err,
		false,
	)
}

// IsRetryableError returns true if the error is temporary and can be retried
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	return !ClassifyError(err).Permanent
}

// IsPermanentError returns true if the error requires user intervention
func IsPermanentError(err error) bool {
	if err == nil {
		return false
	}
	return ClassifyError(err).Permanent
}

// classifyHTTPStatusCode classifies an HTTP status code into a ClientError
func classifyHTTPStatusCode(statusCode int, body string) *ClientError {
	switch statusCode {
	case 401, 403:
		return NewClientError(
			ErrorCodeAuthFailure,
			fmt.Sprintf("Authentication failed with status %d", statusCode),
			nil,
			true,
		)
	case 502:
		return NewClientError(
			ErrorCodeBadGateway,
			fmt.Sprintf("Bad Gateway (502): %s", body),
			nil,
			false,
		)
	case 503:
		return NewClientError(
			ErrorCodeServiceUnavailable,
			fmt.Sprintf("Service Unavailable (503): %s", body),
			nil,
			false,
		)
	case 504:
		return NewClientError(
			ErrorCodeTimeout,
			fmt.Sprintf("Gateway Timeout (504): %s", body),
			nil,
			false,
		)
	default:
		return NewClientError(
			ErrorCodeUnknown,
			fmt.Sprintf("Request failed with status %d: %s", statusCode, body),
			nil,
			false,
		)
	}
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ErrorCodeNone
	}
	return ClassifyError(err).Code
}

// GetErrorKind reports which failure path produced err. Errors that did
// not come from a Client report KindNone.
func GetErrorKind(err error) ErrorKind {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Kind
	}
	return KindNone
}
