package snapscan

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCode represents a specific error type for client-side handling
type ErrorCode string

const (
	// ErrorCodeNone indicates no error
	ErrorCodeNone ErrorCode = ""

	// ErrorCodeConfiguration indicates a required credential is missing.
	// Raised locally, the request never reaches the network.
	ErrorCodeConfiguration ErrorCode = "CONFIGURATION"

	// ErrorCodeDecode indicates a 2xx response whose body is not valid JSON
	ErrorCodeDecode ErrorCode = "DECODE"

	// ErrorCodeClient indicates a 4xx response - the submitted data was rejected
	ErrorCodeClient ErrorCode = "CLIENT_ERROR"

	// ErrorCodeServer indicates a 5xx response - upstream failure
	ErrorCodeServer ErrorCode = "SERVER_ERROR"

	// ErrorCodeUnexpectedStatus indicates a status outside [200,600) or an unfollowed 3xx
	ErrorCodeUnexpectedStatus ErrorCode = "UNEXPECTED_STATUS"

	// ErrorCodeTimeout indicates connection or request timeout
	ErrorCodeTimeout ErrorCode = "TIMEOUT"

	// ErrorCodeTransport indicates the request could not be delivered (DNS, refused, reset)
	ErrorCodeTransport ErrorCode = "TRANSPORT"

	// ErrorCodeEncode indicates the request payload could not be serialized.
	// Raised locally, the request never reaches the network.
	ErrorCodeEncode ErrorCode = "ENCODE"

	// ErrorCodeUnknown indicates an error that did not come from this client
	ErrorCodeUnknown ErrorCode = "UNKNOWN"
)

// Generic messages used when the service does not provide one.
const (
	MessageClientError = "Error in data submitted"
	MessageServerError = "Server error"
	MessageDecodeError = "There was an error decoding the response JSON"
)

// Error is the single error type returned by the client.
type Error struct {
	Code    ErrorCode
	Message string
	// StatusCode is the HTTP status of the response, zero when no response was received.
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error
func NewError(code ErrorCode, message string, statusCode int, err error) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

func configurationError(setter string) *Error {
	return NewError(
		ErrorCodeConfiguration,
		fmt.Sprintf("Please call '%s' first to use this method", setter),
		0,
		nil,
	)
}

// classifyStatus maps a non-2xx status and its already-extracted message to an Error.
// An empty message falls back to the generic text for the status class.
func classifyStatus(statusCode int, message string) *Error {
	switch {
	case statusCode >= 400 && statusCode < 500:
		if message == "" {
			message = MessageClientError
		}
		return NewError(ErrorCodeClient, message, statusCode, nil)
	case statusCode >= 500 && statusCode < 600:
		if message == "" {
			message = MessageServerError
		}
		return NewError(ErrorCodeServer, message, statusCode, nil)
	default:
		return NewError(
			ErrorCodeUnexpectedStatus,
			fmt.Sprintf("Unexpected response status %d", statusCode),
			statusCode,
			nil,
		)
	}
}

// ClassifyError analyzes a transport error and returns a structured Error
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	// Already classified
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewError(ErrorCodeTimeout, "Request timed out or was canceled", 0, err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NewError(
			ErrorCodeTransport,
			fmt.Sprintf("Failed to resolve hostname: %s", dnsErr.Name),
			0,
			err,
		)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return NewError(ErrorCodeTimeout, "Request timed out", 0, err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return NewError(ErrorCodeTimeout, "Connection timed out", 0, err)
		}
		if strings.Contains(opErr.Error(), "connection refused") {
			return NewError(ErrorCodeTransport, "Connection refused - server may be down", 0, err)
		}
	}

	return NewError(ErrorCodeTransport, "Request failed", 0, err)
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ErrorCodeNone
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}

	// Only network and context failures are classified, anything else is
	// not known to be safe to retry.
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ClassifyError(err).Code
	}

	return ErrorCodeUnknown
}

// IsConfigurationError returns true if a credential was missing
func IsConfigurationError(err error) bool {
	return GetErrorCode(err) == ErrorCodeConfiguration
}

// IsDecodeError returns true if a successful response could not be decoded
func IsDecodeError(err error) bool {
	return GetErrorCode(err) == ErrorCodeDecode
}

// IsEncodeError returns true if the request payload could not be serialized
func IsEncodeError(err error) bool {
	return GetErrorCode(err) == ErrorCodeEncode
}

// IsClientError returns true for 4xx responses
func IsClientError(err error) bool {
	return GetErrorCode(err) == ErrorCodeClient
}

// IsServerError returns true for 5xx responses
func IsServerError(err error) bool {
	return GetErrorCode(err) == ErrorCodeServer
}

// IsRetryableError returns true if repeating the identical request may succeed
func IsRetryableError(err error) bool {
	switch GetErrorCode(err) {
	case ErrorCodeServer, ErrorCodeTimeout, ErrorCodeTransport:
		return true
	default:
		return false
	}
}
