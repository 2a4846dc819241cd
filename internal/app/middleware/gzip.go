// Internal/app/middleware/gzip.go.

package middleware

import (
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"strings"
)

const (
	gzipEncoding    = "gzip"
	contentEncoding = "Content-Encoding"
	contentLength   = "Content-Length"
	acceptEncoding  = "Accept-Encoding"
)

// compressWriter gzips the response body. The encoding header is set on the
// first WriteHeader, explicit or implied by Write.
type compressWriter struct {
	w           http.ResponseWriter
	zw          *gzip.Writer
	wroteHeader bool
}

func newCompressWriter(w http.ResponseWriter) *compressWriter {
	return &compressWriter{
		w:  w,
		zw: gzip.NewWriter(w),
	}
}

func (c *compressWriter) Header() http.Header {
	return c.w.Header()
}

func (c *compressWriter) Write(p []byte) (int, error) {
	if !c.wroteHeader {
		c.WriteHeader(http.StatusOK)
	}
	n, err := c.zw.Write(p)
	if err != nil {
		Log.Error().Err(err).Msg("gzip response write failed")
		return n, errors.New("gzip: write response")
	}
	return n, nil
}

func (c *compressWriter) WriteHeader(statusCode int) {
	c.wroteHeader = true
	c.w.Header().Set(contentEncoding, gzipEncoding)
	c.w.Header().Del(contentLength)
	c.w.WriteHeader(statusCode)
}

func (c *compressWriter) Close() error {
	if err := c.zw.Close(); err != nil {
		Log.Error().Err(err).Msg("gzip response flush failed")
		return errors.New("gzip: flush response")
	}
	return nil
}

// compressReader inflates a gzipped request body. io.EOF passes through untouched.
type compressReader struct {
	r  io.ReadCloser
	zr *gzip.Reader
}

func newCompressReader(r io.ReadCloser) (*compressReader, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		Log.Error().Err(err).Msg("gzip request header invalid")
		return nil, errors.New("gzip: open request body")
	}
	return &compressReader{r: r, zr: zr}, nil
}

func (c *compressReader) Read(p []byte) (int, error) {
	n, err := c.zr.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		Log.Error().Err(err).Msg("gzip request read failed")
		return n, errors.New("gzip: read request body")
	}
	return n, err
}

func (c *compressReader) Close() error {
	if err := c.zr.Close(); err != nil {
		return err
	}
	return c.r.Close()
}

// GzipMiddleware inflates gzipped requests and compresses the response when
// the client accepts gzip.
func GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(contentEncoding) == gzipEncoding {
			cr, err := newCompressReader(r.Body)
			if err != nil {
				http.Error(w, "Failed to decode gzip", http.StatusBadRequest)
				return
			}
			defer func() {
				if err := cr.Close(); err != nil {
					Log.Error().Err(err).Msg("closing gzip request body")
				}
			}()

			r.Body = cr
			r.Header.Del(contentEncoding)
		}

		if strings.Contains(r.Header.Get(acceptEncoding), gzipEncoding) {
			cw := newCompressWriter(w)
			defer func() {
				if err := cw.Close(); err != nil {
					Log.Error().Err(err).Msg("closing gzip response")
				}
			}()
			w = cw
		}

		next.ServeHTTP(w, r)
	})
}
