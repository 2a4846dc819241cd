package recall

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dkolesni-prog/recall/internal/app/middleware"
	"github.com/dkolesni-prog/recall/internal/helpers"
	"github.com/dkolesni-prog/recall/internal/transport"
)

type ProbeStatus int

const (
	Reachable ProbeStatus = iota
	Unreachable
	InvalidURL
)

func (s ProbeStatus) String() string {
	switch s {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	default:
		return "invalid_url"
	}
}

// ProbeResult is the outcome of TestConnection. Reason is set for Unreachable.
type ProbeResult struct {
	Status ProbeStatus
	Reason string
}

// TestConnection checks that serverURL answers the search API with JSON.
// It performs no writes and is safe to repeat.
func (c *Client) TestConnection(ctx context.Context, serverURL string) ProbeResult {
	if !helpers.IsValidURL(serverURL) {
		return ProbeResult{Status: InvalidURL}
	}

	resp, err := c.transport.Do(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    helpers.JoinPath(serverURL, "/search_text"),
		Query:  url.Values{"q": {"test"}, "limit": {"1"}},
		Header: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		te := transport.Classify(err)
		middleware.Log.Debug().Err(err).Str("server", serverURL).Msg("Connection test error")
		if te.Unreachable() {
			return ProbeResult{Status: Unreachable, Reason: ErrNetworkUnreachable.Error()}
		}
		return ProbeResult{Status: Unreachable, Reason: "connection failed: " + te.Error()}
	}

	if !resp.OK() {
		return ProbeResult{
			Status: Unreachable,
			Reason: fmt.Sprintf("server error: %d %s", resp.StatusCode, resp.StatusText),
		}
	}
	if !json.Valid(resp.Body) {
		return ProbeResult{Status: Unreachable, Reason: ErrResponseMalformed.Error()}
	}
	return ProbeResult{Status: Reachable}
}
