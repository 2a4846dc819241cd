package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dkolesni-prog/recall/internal/app/middleware"
)

const userAgent = "recall-saver/1.0"

// Resty is the production Transport.
type Resty struct {
	client *resty.Client
}

func NewResty(timeout time.Duration) *Resty {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent)
	return &Resty{client: client}
}

func (t *Resty) Do(ctx context.Context, req Request) (*Response, error) {
	r := t.client.R().SetContext(ctx)
	if len(req.Header) > 0 {
		r.SetHeaders(req.Header)
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		classified := Classify(err)
		middleware.Log.Debug().
			Err(err).
			Str("method", req.Method).
			Str("url", req.URL).
			Stringer("kind", classified.Kind).
			Msg("request failed before a response arrived")
		return nil, classified
	}

	middleware.Log.Debug().
		Str("method", req.Method).
		Str("url", req.URL).
		Int("status", resp.StatusCode()).
		Dur("duration", resp.Time()).
		Msg("request done")

	return &Response{
		StatusCode: resp.StatusCode(),
		StatusText: http.StatusText(resp.StatusCode()),
		Body:       resp.Body(),
	}, nil
}
