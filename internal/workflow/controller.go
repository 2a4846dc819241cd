package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkolesni-prog/recall/internal/app/middleware"
	"github.com/dkolesni-prog/recall/internal/recall"
	"github.com/dkolesni-prog/recall/internal/settings"
	"github.com/dkolesni-prog/recall/internal/tabs"
)

// ErrBusy is returned when an action is triggered while it is still running.
var ErrBusy = errors.New("action already in progress")

// Capturer is the part of recall.Client the controller drives.
type Capturer interface {
	SubmitCapture(ctx context.Context, tab *tabs.Tab, rawTags string) (*recall.CaptureResult, error)
	TestConnection(ctx context.Context, serverURL string) recall.ProbeResult
}

// Settings is the part of settings.Resolver the controller drives.
type Settings interface {
	ServerURL(ctx context.Context) string
	SetServerURL(ctx context.Context, candidate string) (string, error)
	CachedTags(ctx context.Context, pageURL string) string
}

// Options holds how long a status stays visible before it is cleared.
// Zero means the status persists until the next trigger.
type Options struct {
	SaveDisplay     time.Duration
	SettingsDisplay time.Duration
}

func DefaultOptions() Options {
	return Options{
		SaveDisplay:     3 * time.Second,
		SettingsDisplay: 5 * time.Second,
	}
}

// Popup is what the capture form is prefilled with.
type Popup struct {
	URL  string `json:"url"`
	Tags string `json:"tags"`
}

type Controller struct {
	capture  Capturer
	settings Settings
	tabs     tabs.Provider
	renderer Renderer
	opts     Options

	mu      sync.Mutex
	busy    map[Action]bool
	timers  map[Action]*time.Timer
	pending map[Action]uuid.UUID
}

func New(capture Capturer, s Settings, tp tabs.Provider, r Renderer, opts Options) *Controller {
	if r == nil {
		r = RendererFunc(func(Status) {})
	}
	return &Controller{
		capture:  capture,
		settings: s,
		tabs:     tp,
		renderer: r,
		opts:     opts,
		busy:     make(map[Action]bool),
		timers:   make(map[Action]*time.Timer),
		pending:  make(map[Action]uuid.UUID),
	}
}

// Busy reports whether action is currently running.
func (c *Controller) Busy(action Action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy[action]
}

// Save captures the active tab with rawTags.
func (c *Controller) Save(ctx context.Context, rawTags string) (*recall.CaptureResult, error) {
	id, ok := c.begin(ActionSave, msgSaving)
	if !ok {
		return nil, ErrBusy
	}

	tab, err := c.activeTab(ctx)
	if err != nil {
		middleware.Log.Error().Err(err).Msg("Error getting current tab")
		c.finish(id, ActionSave, Failure, Message(recall.ErrNoActiveTab), 0)
		return nil, recall.ErrNoActiveTab
	}

	res, err := c.capture.SubmitCapture(ctx, tab, rawTags)
	if err != nil {
		middleware.Log.Error().Err(err).Str("page", tab.URL).Msg("Save error")
		c.finish(id, ActionSave, Failure, Message(err), 0)
		return nil, err
	}

	middleware.Log.Info().Str("page", tab.URL).Str("id", string(res.ID)).Msg("page saved")
	c.finish(id, ActionSave, Success, SavedMessage(res.ID), c.opts.SaveDisplay)
	return res, nil
}

// Test probes candidate, or the stored server URL when candidate is blank.
// The outcome is in the returned result; the error is only ErrBusy.
func (c *Controller) Test(ctx context.Context, candidate string) (recall.ProbeResult, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		candidate = c.settings.ServerURL(ctx)
	}

	id, ok := c.begin(ActionTest, msgTesting)
	if !ok {
		return recall.ProbeResult{}, ErrBusy
	}

	res := c.capture.TestConnection(ctx, candidate)
	state := Failure
	if res.Status == recall.Reachable {
		state = Success
	}
	middleware.Log.Debug().Str("server", candidate).Str("status", res.Status.String()).Msg("connection tested")
	c.finish(id, ActionTest, state, ProbeMessage(res), 0)
	return res, nil
}

// SaveSettings validates and stores candidate as the server URL.
func (c *Controller) SaveSettings(ctx context.Context, candidate string) (string, error) {
	id, ok := c.begin(ActionSettings, "")
	if !ok {
		return "", ErrBusy
	}

	clean, err := c.settings.SetServerURL(ctx, candidate)
	if err != nil {
		msg := msgSettingsError
		var invalid *settings.ValidationError
		if errors.As(err, &invalid) {
			msg = msgSettingsInvalid
		}
		c.finish(id, ActionSettings, Failure, msg, c.opts.SettingsDisplay)
		return "", err
	}

	c.finish(id, ActionSettings, Success, msgSettingsSaved, c.opts.SettingsDisplay)
	return clean, nil
}

// Reset hands the default server URL back to the form. Nothing is stored
// until the form is saved.
func (c *Controller) Reset() string {
	id := uuid.New()
	c.mu.Lock()
	c.stopTimerLocked(ActionReset)
	c.mu.Unlock()

	c.render(id, ActionReset, Success, msgSettingsReset)

	c.mu.Lock()
	c.scheduleLocked(id, ActionReset, c.opts.SettingsDisplay)
	c.mu.Unlock()
	return settings.DefaultServerURL
}

// Prefill returns the active tab and the tags last saved for it.
func (c *Controller) Prefill(ctx context.Context) (Popup, error) {
	tab, err := c.activeTab(ctx)
	if err != nil {
		return Popup{}, recall.ErrNoActiveTab
	}
	return Popup{URL: tab.URL, Tags: c.settings.CachedTags(ctx, tab.URL)}, nil
}

// Close stops pending status clears.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for action := range c.timers {
		c.stopTimerLocked(action)
	}
}

// activeTab treats a provider that answers with no tab like one that fails.
func (c *Controller) activeTab(ctx context.Context) (*tabs.Tab, error) {
	tab, err := c.tabs.ActiveTab(ctx)
	if err != nil {
		return nil, err
	}
	if tab == nil {
		return nil, recall.ErrNoActiveTab
	}
	return tab, nil
}

func (c *Controller) begin(action Action, message string) (uuid.UUID, bool) {
	c.mu.Lock()
	if c.busy[action] {
		c.mu.Unlock()
		middleware.Log.Debug().Str("action", string(action)).Msg("ignored trigger while busy")
		return uuid.Nil, false
	}
	c.busy[action] = true
	c.stopTimerLocked(action)
	c.mu.Unlock()

	id := uuid.New()
	c.renderer.Render(Status{
		RunID:   id,
		Action:  action,
		State:   Busy,
		Label:   busyLabels[action],
		Message: message,
	})
	return id, true
}

func (c *Controller) finish(id uuid.UUID, action Action, state State, message string, display time.Duration) {
	c.render(id, action, state, message)

	c.mu.Lock()
	c.busy[action] = false
	c.scheduleLocked(id, action, display)
	c.mu.Unlock()
}

func (c *Controller) render(id uuid.UUID, action Action, state State, message string) {
	c.renderer.Render(Status{
		RunID:   id,
		Action:  action,
		State:   state,
		Label:   idleLabels[action],
		Message: message,
	})
}

// scheduleLocked clears the status of run id after display unless another
// run of the same action has started since.
func (c *Controller) scheduleLocked(id uuid.UUID, action Action, display time.Duration) {
	if display <= 0 {
		return
	}

	c.pending[action] = id
	c.timers[action] = time.AfterFunc(display, func() {
		c.mu.Lock()
		if c.pending[action] != id || c.busy[action] {
			c.mu.Unlock()
			return
		}
		delete(c.pending, action)
		delete(c.timers, action)
		c.mu.Unlock()

		c.render(id, action, Idle, "")
	})
}

func (c *Controller) stopTimerLocked(action Action) {
	if t, ok := c.timers[action]; ok {
		t.Stop()
		delete(c.timers, action)
	}
	delete(c.pending, action)
}
