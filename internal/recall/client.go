// Package recall talks to the remote capture service: it probes a candidate
// server, submits captures and runs searches.
package recall

import (
	"context"
	"strings"

	"github.com/dkolesni-prog/recall/internal/helpers"
	"github.com/dkolesni-prog/recall/internal/transport"
)

// Settings is the part of the settings resolver the client depends on.
type Settings interface {
	ServerURL(ctx context.Context) string
	SetCachedTags(ctx context.Context, pageURL, tags string) error
}

// Client is stateless apart from its collaborators; the server URL is resolved per call.
type Client struct {
	transport transport.Transport
	settings  Settings
}

func NewClient(t transport.Transport, s Settings) *Client {
	return &Client{transport: t, settings: s}
}

// ParseTags splits comma-separated input, trims each piece and drops empty ones.
// Order and duplicates are kept.
func ParseTags(raw string) []string {
	tags := make([]string, 0)
	for _, piece := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(piece); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func (c *Client) endpoint(ctx context.Context, path string) string {
	return helpers.JoinPath(c.settings.ServerURL(ctx), path)
}
