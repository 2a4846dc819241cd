// Internal/app/endpoints/endpoints.go.
package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dkolesni-prog/recall/internal/app/middleware"
	"github.com/dkolesni-prog/recall/internal/recall"
	"github.com/dkolesni-prog/recall/internal/settings"
	"github.com/dkolesni-prog/recall/internal/tabs"
	"github.com/dkolesni-prog/recall/internal/workflow"
)

const (
	internalServerError = "Internal Server Error."
	contentType         = "Content-Type"
	contentTypeJSON     = "application/json; charset=utf-8"
	tabURLHeader        = "X-Tab-Url"
)

// ServerURLSource reads the stored server URL.
type ServerURLSource interface {
	ServerURL(ctx context.Context) string
}

// Pinger checks that a backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type errorResponse struct {
	Error string `json:"error"`
}

type saveRequest struct {
	URL  string `json:"url"`
	Tags string `json:"tags"`
}

type saveResponse struct {
	ID      recall.CaptureID `json:"id"`
	Message string           `json:"message"`
}

type testRequest struct {
	ServerURL string `json:"server_url"`
}

type testResponse struct {
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

type settingsBody struct {
	ServerURL string `json:"server_url"`
}

// NewRouter creates the control API served to the extension pages.
func NewRouter(ctl *workflow.Controller, src ServerURLSource, pingers []Pinger, version string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithLogging, middleware.WithCORS, middleware.GzipMiddleware)

	r.Get("/popup", func(w http.ResponseWriter, r *http.Request) {
		Popup(w, r, ctl)
	})
	r.Post("/save", func(w http.ResponseWriter, r *http.Request) {
		SavePage(w, r, ctl)
	})
	r.Post("/test", func(w http.ResponseWriter, r *http.Request) {
		TestConnection(w, r, ctl)
	})
	r.Get("/settings", func(w http.ResponseWriter, r *http.Request) {
		GetSettings(w, r, src)
	})
	r.Put("/settings", func(w http.ResponseWriter, r *http.Request) {
		PutSettings(w, r, ctl)
	})
	r.Post("/settings/reset", func(w http.ResponseWriter, r *http.Request) {
		ResetSettings(w, r, ctl)
	})
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		Ping(w, r, pingers)
	})
	r.Get("/version/", func(w http.ResponseWriter, r *http.Request) {
		GetVersion(w, r, version)
	})
	return r
}

// withTab attaches the page URL carried by the request, if any.
func withTab(r *http.Request, bodyURL string) context.Context {
	pageURL := bodyURL
	if pageURL == "" {
		pageURL = r.URL.Query().Get("url")
	}
	if pageURL == "" {
		pageURL = r.Header.Get(tabURLHeader)
	}
	return tabs.WithActiveTab(r.Context(), pageURL)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(contentType, contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		middleware.Log.Error().Err(err).Msg("failed to encode response")
	}
}

// Popup returns the form prefill for the page named by ?url= or X-Tab-Url.
func Popup(w http.ResponseWriter, r *http.Request, ctl *workflow.Controller) {
	popup, err := ctl.Prefill(withTab(r, ""))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: workflow.Message(err)})
		return
	}
	writeJSON(w, http.StatusOK, popup)
}

// SavePage captures a page through the save workflow.
func SavePage(w http.ResponseWriter, r *http.Request, ctl *workflow.Controller) {
	defer func() { _ = r.Body.Close() }()
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Failed to parse JSON", http.StatusBadRequest)
		return
	}

	res, err := ctl.Save(withTab(r, req.URL), req.Tags)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, saveResponse{ID: res.ID, Message: workflow.SavedMessage(res.ID)})
	case errors.Is(err, workflow.ErrBusy):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, recall.ErrNoActiveTab):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: workflow.Message(err)})
	default:
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: workflow.Message(err)})
	}
}

// TestConnection probes server_url, or the stored URL when it is empty.
func TestConnection(w http.ResponseWriter, r *http.Request, ctl *workflow.Controller) {
	defer func() { _ = r.Body.Close() }()
	var req testRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Failed to parse JSON", http.StatusBadRequest)
		return
	}

	res, err := ctl.Test(r.Context(), req.ServerURL)
	if err != nil {
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, testResponse{
		Status:  res.Status.String(),
		Reason:  res.Reason,
		Message: workflow.ProbeMessage(res),
	})
}

// GetSettings reports the server URL in effect.
func GetSettings(w http.ResponseWriter, r *http.Request, src ServerURLSource) {
	writeJSON(w, http.StatusOK, settingsBody{ServerURL: src.ServerURL(r.Context())})
}

// PutSettings validates and stores a new server URL.
func PutSettings(w http.ResponseWriter, r *http.Request, ctl *workflow.Controller) {
	defer func() { _ = r.Body.Close() }()
	var req settingsBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Failed to parse JSON", http.StatusBadRequest)
		return
	}

	clean, err := ctl.SaveSettings(r.Context(), req.ServerURL)
	if err != nil {
		var invalid *settings.ValidationError
		switch {
		case errors.As(err, &invalid):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: workflow.Message(err)})
		case errors.Is(err, workflow.ErrBusy):
			writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		default:
			http.Error(w, internalServerError, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, settingsBody{ServerURL: clean})
}

// ResetSettings hands back the default server URL without storing it.
func ResetSettings(w http.ResponseWriter, _ *http.Request, ctl *workflow.Controller) {
	writeJSON(w, http.StatusOK, settingsBody{ServerURL: ctl.Reset()})
}

// Ping checks that every backing store answers.
func Ping(w http.ResponseWriter, r *http.Request, pingers []Pinger) {
	for _, p := range pingers {
		if err := p.Ping(r.Context()); err != nil {
			middleware.Log.Error().Err(err).Msg("store ping failed")
			http.Error(w, "Store connection failed", http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

// GetVersion prints the build version.
func GetVersion(w http.ResponseWriter, _ *http.Request, version string) {
	w.Header().Set(contentType, "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(version))
}
