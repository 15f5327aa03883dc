package qbt

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"go.uber.org/multierr"
)

// ErrorCode represents a specific error type for client-side handling
type ErrorCode string

const (
	// ErrorCodeNone indicates no error
	ErrorCodeNone ErrorCode = ""

	// ErrorCodeTorrentsNotSet indicates an add was requested with no sources
	ErrorCodeTorrentsNotSet ErrorCode = "TORRENTS_NOT_SET"

	// ErrorCodeInvalidSource indicates a batch entry that is neither a URL nor a file
	ErrorCodeInvalidSource ErrorCode = "INVALID_SOURCE"

	// ErrorCodeTorrentFilePath indicates a local .torrent file could not be opened or read
	ErrorCodeTorrentFilePath ErrorCode = "TORRENT_FILE_PATH"

	// ErrorCodeInvalidDescriptor indicates a descriptor with neither URLs nor files reached the sender
	ErrorCodeInvalidDescriptor ErrorCode = "INVALID_DESCRIPTOR"

	// ErrorCodeNetwork indicates the server answered with a non-success status
	ErrorCodeNetwork ErrorCode = "NETWORK_ERROR"

	// ErrorCodeTransport indicates the request never produced a response
	ErrorCodeTransport ErrorCode = "TRANSPORT_ERROR"

	// ErrorCodeURLsAddFailed indicates the files half succeeded and the URLs half failed
	ErrorCodeURLsAddFailed ErrorCode = "URLS_ADD_FAILED"

	// ErrorCodeTorrentFilesAddFailed indicates the URLs half succeeded and the files half failed
	ErrorCodeTorrentFilesAddFailed ErrorCode = "TORRENT_FILES_ADD_FAILED"

	// ErrorCodeBothAddFailed indicates both halves of a mixed add failed
	ErrorCodeBothAddFailed ErrorCode = "BOTH_ADD_FAILED"

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

	// ErrorCodeUnknown indicates an unclassified error
	ErrorCodeUnknown ErrorCode = "UNKNOWN"
)

// Sentinels for errors.Is; matching is done on Code only.
var (
	ErrTorrentsNotSet        = NewClientError(ErrorCodeTorrentsNotSet, "no torrents were set", nil, true)
	ErrInvalidSource         = NewClientError(ErrorCodeInvalidSource, "source is neither a url nor a torrent file", nil, true)
	ErrTorrentFilePath       = NewClientError(ErrorCodeTorrentFilePath, "torrent file could not be read", nil, true)
	ErrInvalidDescriptor     = NewClientError(ErrorCodeInvalidDescriptor, "descriptor has neither urls nor torrent files", nil, true)
	ErrNetwork               = NewClientError(ErrorCodeNetwork, "request failed", nil, false)
	ErrTransport             = NewClientError(ErrorCodeTransport, "transport failed", nil, false)
	ErrURLsAddFailed         = NewClientError(ErrorCodeURLsAddFailed, "urls add failed", nil, false)
	ErrTorrentFilesAddFailed = NewClientError(ErrorCodeTorrentFilesAddFailed, "torrent files add failed", nil, false)
	ErrBothAddFailed         = NewClientError(ErrorCodeBothAddFailed, "both failed", nil, false)
)

// ClientError represents a structured error with classification
type ClientError struct {
	Code    ErrorCode
	Message string
	Err     error
	// StatusCode is the HTTP status for NETWORK_ERROR, zero otherwise
	StatusCode int
	// Permanent indicates whether this error requires user intervention (true)
	// or can be resolved by retrying (false)
	Permanent bool
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a ClientError with the same code.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return t.Code != ErrorCodeNone && t.Code == e.Code
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

func newInvalidSourceError(index int) *ClientError {
	return NewClientError(ErrorCodeInvalidSource, fmt.Sprintf("source %d is neither a url nor a torrent file", index), nil, true)
}

func newTorrentFileError(path string, err error) *ClientError {
	return NewClientError(ErrorCodeTorrentFilePath, fmt.Sprintf("cannot read torrent file %q", path), err, true)
}

// newStatusError builds the NETWORK_ERROR for a completed request with a non-2xx status.
func newStatusError(statusCode int, body string) *ClientError {
	classified := classifyHTTPStatusCode(statusCode, body)
	return &ClientError{
		Code:       ErrorCodeNetwork,
		Message:    classified.Message,
		StatusCode: statusCode,
		Permanent:  classified.Permanent,
	}
}

func newTransportError(err error) *ClientError {
	return NewClientError(ErrorCodeTransport, "request could not be completed", err, ClassifyError(err).Permanent)
}

// StatusCode returns the HTTP status carried by a NETWORK_ERROR anywhere in err's chain.
// Every half of a combined failure is searched.
func StatusCode(err error) (int, bool) {
	for _, e := range multierr.Errors(err) {
		var clientErr *ClientError
		if !errors.As(e, &clientErr) {
			continue
		}
		if clientErr.Code == ErrorCodeNetwork {
			return clientErr.StatusCode, true
		}
		if code, ok := StatusCode(clientErr.Err); ok {
			return code, true
		}
	}
	return 0, false
}

// ClassifyError analyzes an error and returns a structured ClientError
func ClassifyError(err error) *ClientError {
	if err == nil {
		return nil
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		// transport errors are opaque wrappers; classify what they carry
		if clientErr.Code == ErrorCodeTransport && clientErr.Err != nil {
			return ClassifyError(clientErr.Err)
		}
		return clientErr
	}

	errStr := err.Error()

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NewClientError(
			ErrorCodeDNS,
			fmt.Sprintf("Failed to resolve hostname: %s", dnsErr.Name),
			err,
			true,
		)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return classifyOpError(opErr, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Err != nil {
			if classified := ClassifyError(urlErr.Err); classified != nil && classified.Code != ErrorCodeUnknown {
				return classified
			}
		}

		if urlErr.Timeout() {
			return NewClientError(
				ErrorCodeTimeout,
				"Request timed out",
				err,
				false,
			)
		}
	}

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
				"Connection refused - server may be down or port is incorrect",
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

	if strings.Contains(lowerErr, "malformed http response") {
		return NewClientError(
			ErrorCodeHTTPSRequired,
			"Protocol mismatch - try using HTTPS instead of HTTP",
			err,
			true,
		)
	}

	if strings.Contains(lowerErr, "connection refused") {
		return NewClientError(
			ErrorCodeConnectionRefused,
			"Connection refused - server may be down",
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

	// "Fails." is what qBittorrent answers to a bad login
	if strings.Contains(lowerErr, "fails.") ||
		strings.Contains(lowerErr, "unauthorized") ||
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
	switch {
	case statusCode == 401 || statusCode == 403:
		return NewClientError(
			ErrorCodeAuthFailure,
			fmt.Sprintf("Authentication failed with status %d", statusCode),
			nil,
			true,
		)
	case statusCode == 415:
		// qBittorrent answers 415 when none of the submitted torrents is valid
		return NewClientError(
			ErrorCodeUnknown,
			fmt.Sprintf("Torrent is not valid (415): %s", body),
			nil,
			true,
		)
	case statusCode >= 500:
		return NewClientError(
			ErrorCodeUnknown,
			fmt.Sprintf("Server error (%d): %s", statusCode, body),
			nil,
			false,
		)
	default:
		return NewClientError(
			ErrorCodeUnknown,
			fmt.Sprintf("Request failed with status %d: %s", statusCode, body),
			nil,
			statusCode >= 400 && statusCode < 500,
		)
	}
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ErrorCodeNone
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Code
	}

	return ClassifyError(err).Code
}
