package ollama

import (
	"errors"
	"net"
	"strconv"
	"syscall"
)

// ConnectionError signals that the configured host could not be reached at all.
type ConnectionError struct {
	Host string
	Err  error
}

func (e *ConnectionError) Error() string { return "could not connect to Ollama at " + e.Host }

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsConnectionError reports whether err means the server was unreachable.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message + " (status code: " + strconv.Itoa(e.StatusCode) + ")"
}

// isDialFailure reports transport errors raised before a connection existed:
// refused or reset dials, unresolvable names and dial timeouts.
func isDialFailure(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	return false
}
