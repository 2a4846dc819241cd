// Package settings resolves the recall server URL and the per-page tag cache
// from externally owned stores. Nothing is cached here: every call reads the
// store again, so a change saved from one surface is seen by the next action.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dkolesni-prog/recall/internal/app/middleware"
	"github.com/dkolesni-prog/recall/internal/helpers"
	"github.com/dkolesni-prog/recall/internal/store"
)

const (
	DefaultServerURL = "http://localhost:8000"

	// ServerURLKey lives in the sync-scoped store.
	ServerURLKey = "serverUrl"

	tagKeyPrefix = "tags_"
)

// ValidationError rejects a malformed server URL before anything is stored.
type ValidationError struct {
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid server URL %q", e.Value)
}

// TagKey is the local-store key for a page URL, used verbatim.
func TagKey(pageURL string) string {
	return tagKeyPrefix + pageURL
}

type Resolver struct {
	sync     store.Store
	local    store.Store
	override string
}

// NewResolver reads the server URL from syncStore and tag strings from localStore.
// The two may be the same store.
func NewResolver(syncStore, localStore store.Store) *Resolver {
	return &Resolver{sync: syncStore, local: localStore}
}

// Override pins the server URL for the life of the resolver without storing it.
func (r *Resolver) Override(candidate string) error {
	candidate = strings.TrimSpace(candidate)
	if !helpers.IsValidURL(candidate) {
		return &ValidationError{Value: candidate}
	}
	r.override = helpers.StripTrailingSlash(candidate)
	return nil
}

// ServerURL never fails: unset, empty or unreadable values fall back to DefaultServerURL.
func (r *Resolver) ServerURL(ctx context.Context) string {
	if r.override != "" {
		return r.override
	}
	value, err := r.sync.Get(ctx, ServerURLKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			middleware.Log.Warn().Err(err).Msg("Error loading settings, using default server URL")
		}
		return DefaultServerURL
	}
	if value == "" {
		return DefaultServerURL
	}
	return value
}

// SetServerURL validates candidate, strips one trailing slash and persists it.
// It returns the value that was stored.
func (r *Resolver) SetServerURL(ctx context.Context, candidate string) (string, error) {
	candidate = strings.TrimSpace(candidate)
	if !helpers.IsValidURL(candidate) {
		return "", &ValidationError{Value: candidate}
	}

	clean := helpers.StripTrailingSlash(candidate)
	if err := r.sync.Set(ctx, ServerURLKey, clean); err != nil {
		middleware.Log.Error().Err(err).Msg("Error saving settings")
		return "", fmt.Errorf("save server URL: %w", err)
	}
	return clean, nil
}

// EnsureDefaults seeds the default server URL on first install and leaves an existing value alone.
func (r *Resolver) EnsureDefaults(ctx context.Context) error {
	_, err := r.sync.Get(ctx, ServerURLKey)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("read server URL: %w", err)
	}

	if err := r.sync.Set(ctx, ServerURLKey, DefaultServerURL); err != nil {
		return fmt.Errorf("seed server URL: %w", err)
	}
	middleware.Log.Info().Str("serverUrl", DefaultServerURL).Msg("installed with default settings")
	return nil
}

// CachedTags returns the raw tag string last saved for pageURL, or "".
func (r *Resolver) CachedTags(ctx context.Context, pageURL string) string {
	value, err := r.local.Get(ctx, TagKey(pageURL))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			middleware.Log.Warn().Err(err).Str("page", pageURL).Msg("Error loading saved tags")
		}
		return ""
	}
	return value
}

// SetCachedTags remembers tags for pageURL. Entries are never evicted.
func (r *Resolver) SetCachedTags(ctx context.Context, pageURL, tags string) error {
	if err := r.local.Set(ctx, TagKey(pageURL), tags); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	return nil
}
