package recall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dkolesni-prog/recall/internal/app/middleware"
	"github.com/dkolesni-prog/recall/internal/tabs"
	"github.com/dkolesni-prog/recall/internal/transport"
)

// CaptureRequest is the body of POST /save/.
type CaptureRequest struct {
	URL  string   `json:"url"`
	Tags []string `json:"tags"`
}

// CaptureID is the server's opaque identifier, numeric or string on the wire.
type CaptureID string

func (id *CaptureID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return errors.New("missing id")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = CaptureID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = CaptureID(n.String())
	return nil
}

// CaptureResult is a successful capture.
type CaptureResult struct {
	ID CaptureID
}

type saveResponse struct {
	Status string     `json:"status"`
	ID     *CaptureID `json:"id"`
}

// SubmitCapture saves tab to the server with the tags parsed from rawTags.
// On success a non-blank rawTags is remembered for the page.
func (c *Client) SubmitCapture(ctx context.Context, tab *tabs.Tab, rawTags string) (*CaptureResult, error) {
	if tab == nil {
		return nil, ErrNoActiveTab
	}

	body := CaptureRequest{URL: tab.URL, Tags: ParseTags(rawTags)}
	target := c.endpoint(ctx, "/save/")

	resp, err := c.transport.Do(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    target,
		Header: map[string]string{"Content-Type": "application/json"},
		Body:   body,
	})
	if err != nil {
		middleware.Log.Debug().Err(err).Str("server", target).Msg("Save error")
		return nil, transportFailure(err)
	}

	if !resp.OK() {
		return nil, &ServerRejectedError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	var decoded saveResponse
	if err := json.Unmarshal(resp.Body, &decoded); err != nil || decoded.ID == nil {
		return nil, &TransportError{Message: ErrResponseMalformed.Error(), Err: ErrResponseMalformed}
	}

	if strings.TrimSpace(rawTags) != "" {
		if err := c.settings.SetCachedTags(ctx, tab.URL, rawTags); err != nil {
			middleware.Log.Warn().Err(err).Str("page", tab.URL).Msg("capture saved but tags were not cached")
		}
	}

	middleware.Log.Debug().Str("page", tab.URL).Str("id", string(*decoded.ID)).Msg("page saved")
	return &CaptureResult{ID: *decoded.ID}, nil
}
