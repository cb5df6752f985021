package errors

import (
	"fmt"
	"strings"
)

// UserFriendlyError provides user-friendly error messages with context and hints
type UserFriendlyError struct {
	Message string
	Reason  string
	Hint    string
	Try     string
	Err     error
}

func (e UserFriendlyError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Message)
	if e.Reason != "" {
		buf.WriteString("\n  Reason: " + e.Reason)
	}
	if e.Hint != "" {
		buf.WriteString("\n  Hint: " + e.Hint)
	}
	if e.Try != "" {
		buf.WriteString("\n  Try: " + e.Try)
	}
	if e.Err != nil {
		buf.WriteString("\n  Details: " + e.Err.Error())
	}
	return buf.String()
}

func (e UserFriendlyError) Unwrap() error {
	return e.Err
}

// WrapNetworkError wraps network errors with user-friendly context
func WrapNetworkError(err error, addr string) error {
	if err == nil {
		return nil
	}

	return UserFriendlyError{
		Message: fmt.Sprintf("Failed to communicate with PLC endpoint at %s", addr),
		Reason:  extractNetworkReason(err),
		Hint:    "The endpoint may not be running, or there may be a network connectivity issue",
		Try:     fmt.Sprintf("plcsim client read --addr %s heartbeat", addr),
		Err:     err,
	}
}

// WrapConfigError wraps configuration errors with user-friendly context
func WrapConfigError(err error, configPath string) error {
	if err == nil {
		return nil
	}

	return UserFriendlyError{
		Message: fmt.Sprintf("Configuration error in %s", configPath),
		Reason:  err.Error(),
		Hint:    "Run 'plcsim serve print-default-config' for a reference configuration",
		Try:     fmt.Sprintf("plcsim serve validate-config --config %s", configPath),
		Err:     err,
	}
}

func extractNetworkReason(err error) string {
	errStr := err.Error()

	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return "Request timeout - endpoint may be offline or unreachable"
	}
	if strings.Contains(errStr, "connection refused") {
		return "Connection refused - endpoint may not be listening on this port"
	}
	if strings.Contains(errStr, "no route to host") {
		return "No route to host - network routing issue or endpoint unreachable"
	}
	if strings.Contains(errStr, "connection reset") {
		return "Connection reset - endpoint closed the connection unexpectedly"
	}

	return "Network communication failed"
}
