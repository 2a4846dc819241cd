// Package transport issues requests to the recall server and classifies
// connection-level failures, so callers never inspect error strings.
package transport

import (
	"context"
	"errors"
	"net"
	"net/url"
	"syscall"
)

// Kind says why a request never produced an HTTP response.
type Kind int

const (
	KindOther Kind = iota
	KindConnectionRefused
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindConnectionRefused:
		return "connection refused"
	case KindTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// Error is returned by Transport.Do when no response was received.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unreachable reports whether the endpoint could not be reached at all.
func (e *Error) Unreachable() bool {
	return e.Kind == KindConnectionRefused || e.Kind == KindTimeout
}

// Request describes one call. A non-nil Body is sent as JSON.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	Header map[string]string
	Body   any
}

// Response is whatever the server answered, successful or not.
type Response struct {
	StatusCode int
	StatusText string
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport sends exactly one request; it never retries.
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Classify wraps err into an *Error with the matching Kind.
func Classify(err error) *Error {
	var te *Error
	if errors.As(err, &te) {
		return te
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: KindTimeout, Err: err}
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH):
		return &Error{Kind: KindConnectionRefused, Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{Kind: KindConnectionRefused, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &Error{Kind: KindConnectionRefused, Err: err}
	}
	return &Error{Kind: KindOther, Err: err}
}
