package recall

import (
	"errors"
	"fmt"

	"github.com/dkolesni-prog/recall/internal/transport"
)

var (
	// ErrNoActiveTab aborts a capture before any network call.
	ErrNoActiveTab = errors.New("no active tab found")
	// ErrNetworkUnreachable means the server could not be connected to at all.
	ErrNetworkUnreachable = errors.New("cannot reach server")
	// ErrResponseMalformed marks a 2xx answer whose body is not what the API promises.
	ErrResponseMalformed = errors.New("invalid response")
)

// TransportError is any other failure between sending the request and reading a usable answer.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerRejectedError is a non-2xx answer. Body is kept verbatim.
type ServerRejectedError struct {
	StatusCode int
	Body       string
}

func (e *ServerRejectedError) Error() string {
	return fmt.Sprintf("server rejected request (%d): %s", e.StatusCode, e.Body)
}

// transportFailure maps a failed Do into NetworkUnreachable or TransportError.
func transportFailure(err error) error {
	te := transport.Classify(err)
	if te.Unreachable() {
		return fmt.Errorf("%w: %w", ErrNetworkUnreachable, te)
	}
	return &TransportError{Message: te.Error(), Err: te}
}
