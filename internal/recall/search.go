package recall

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dkolesni-prog/recall/internal/transport"
)

// SearchQuery mirrors the query parameters of GET /search_text.
type SearchQuery struct {
	Query     string
	Limit     int
	Tags      []string
	WholeWord bool
}

// SearchResult is one saved page as returned by the server.
type SearchResult struct {
	ID        int    `json:"id"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Tags      string `json:"tags"`
	Content   string `json:"content"`
	SavedPath string `json:"saved_path"`
	CreatedAt string `json:"created_at"`
}

// Search runs a full-text search against the configured server.
func (c *Client) Search(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("q", q.Query)
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("whole_word", strconv.FormatBool(q.WholeWord))
	for _, tag := range q.Tags {
		params.Add("tags", tag)
	}

	body, err := c.get(ctx, "/search_text", params)
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, &TransportError{Message: fmt.Sprintf("decode response: %v", err), Err: ErrResponseMalformed}
	}
	return results, nil
}

// OriginalURL looks up the URL a saved page was captured from.
func (c *Client) OriginalURL(ctx context.Context, id int) (string, error) {
	body, err := c.get(ctx, "/get_url", url.Values{"id": {strconv.Itoa(id)}})
	if err != nil {
		return "", err
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.URL == "" {
		return "", &TransportError{Message: ErrResponseMalformed.Error(), Err: ErrResponseMalformed}
	}
	return payload.URL, nil
}

// PageURL is the server's archived copy of a saved page.
func (c *Client) PageURL(ctx context.Context, id int) string {
	return c.endpoint(ctx, "/page/"+strconv.Itoa(id))
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	resp, err := c.transport.Do(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    c.endpoint(ctx, path),
		Query:  params,
		Header: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, transportFailure(err)
	}
	if !resp.OK() {
		return nil, &ServerRejectedError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	return resp.Body, nil
}
