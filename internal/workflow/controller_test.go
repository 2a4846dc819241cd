package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkolesni-prog/recall/internal/recall"
	"github.com/dkolesni-prog/recall/internal/settings"
	"github.com/dkolesni-prog/recall/internal/store"
	"github.com/dkolesni-prog/recall/internal/tabs"
)

type recorder struct {
	mu       sync.Mutex
	statuses []Status
}

func (r *recorder) Render(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *recorder) all() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status(nil), r.statuses...)
}

// fakeCapturer blocks SubmitCapture until release is closed when release is set.
type fakeCapturer struct {
	release chan struct{}
	started chan struct{}
	result  *recall.CaptureResult
	err     error
	probe   recall.ProbeResult
	probed  []string
}

func (f *fakeCapturer) SubmitCapture(_ context.Context, tab *tabs.Tab, _ string) (*recall.CaptureResult, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.result, f.err
}

func (f *fakeCapturer) TestConnection(_ context.Context, serverURL string) recall.ProbeResult {
	f.probed = append(f.probed, serverURL)
	return f.probe
}

func newController(capture Capturer, opts Options) (*Controller, *recorder, *settings.Resolver) {
	rec := &recorder{}
	mem := store.NewMemoryStorage()
	resolver := settings.NewResolver(mem, mem)
	return New(capture, resolver, tabs.ContextProvider{}, rec, opts), rec, resolver
}

func withTab(url string) context.Context {
	return tabs.WithActiveTab(context.Background(), url)
}

func TestSaveSuccessRendersBusyThenSuccessThenClears(t *testing.T) {
	capture := &fakeCapturer{result: &recall.CaptureResult{ID: "42"}}
	ctl, rec, _ := newController(capture, Options{SaveDisplay: 100 * time.Millisecond})
	defer ctl.Close()

	res, err := ctl.Save(withTab("https://a.com"), "a,b")
	require.NoError(t, err)
	assert.Equal(t, recall.CaptureID("42"), res.ID)
	assert.False(t, ctl.Busy(ActionSave))

	statuses := rec.all()
	require.Len(t, statuses, 2)
	assert.Equal(t, Busy, statuses[0].State)
	assert.Equal(t, "Saving...", statuses[0].Label)
	assert.Equal(t, Success, statuses[1].State)
	assert.Equal(t, "Save Page", statuses[1].Label)
	assert.Equal(t, "✓ Saved successfully (ID: 42)", statuses[1].Message)
	assert.Equal(t, statuses[0].RunID, statuses[1].RunID)

	assert.Eventually(t, func() bool {
		all := rec.all()
		return len(all) == 3 && all[2].State == Idle && all[2].Message == ""
	}, time.Second, 5*time.Millisecond)
}

func TestSaveFailurePersists(t *testing.T) {
	capture := &fakeCapturer{err: &recall.ServerRejectedError{StatusCode: 500, Body: "boom"}}
	ctl, rec, _ := newController(capture, Options{SaveDisplay: 10 * time.Millisecond})
	defer ctl.Close()

	_, err := ctl.Save(withTab("https://a.com"), "a")
	require.Error(t, err)

	time.Sleep(30 * time.Millisecond)
	statuses := rec.all()
	require.Len(t, statuses, 2)
	assert.Equal(t, Failure, statuses[1].State)
	assert.Equal(t, "Error: boom", statuses[1].Message)
}

func TestSaveWithoutTab(t *testing.T) {
	capture := &fakeCapturer{}
	ctl, rec, _ := newController(capture, DefaultOptions())

	_, err := ctl.Save(context.Background(), "a")
	assert.ErrorIs(t, err, recall.ErrNoActiveTab)

	statuses := rec.all()
	require.Len(t, statuses, 2)
	assert.Equal(t, "Error: No active tab found", statuses[1].Message)
}

type emptyTabProvider struct{}

func (emptyTabProvider) ActiveTab(context.Context) (*tabs.Tab, error) { return nil, nil }

func TestSaveWhenProviderReturnsNoTab(t *testing.T) {
	rec := &recorder{}
	mem := store.NewMemoryStorage()
	ctl := New(&fakeCapturer{}, settings.NewResolver(mem, mem), emptyTabProvider{}, rec, DefaultOptions())
	defer ctl.Close()

	var err error
	require.NotPanics(t, func() {
		_, err = ctl.Save(context.Background(), "a")
	})
	assert.ErrorIs(t, err, recall.ErrNoActiveTab)
	assert.False(t, ctl.Busy(ActionSave), "a failed save releases the action")

	statuses := rec.all()
	require.Len(t, statuses, 2)
	assert.Equal(t, Failure, statuses[1].State)
	assert.Equal(t, "Error: No active tab found", statuses[1].Message)

	_, err = ctl.Prefill(context.Background())
	assert.ErrorIs(t, err, recall.ErrNoActiveTab)
}

func TestSaveWhileBusyIsNoop(t *testing.T) {
	capture := &fakeCapturer{
		release: make(chan struct{}),
		started: make(chan struct{}),
		result:  &recall.CaptureResult{ID: "1"},
	}
	ctl, rec, _ := newController(capture, Options{})

	done := make(chan error, 1)
	go func() {
		_, err := ctl.Save(withTab("https://a.com"), "")
		done <- err
	}()
	<-capture.started

	_, err := ctl.Save(withTab("https://a.com"), "")
	assert.ErrorIs(t, err, ErrBusy)
	assert.True(t, ctl.Busy(ActionSave))

	close(capture.release)
	require.NoError(t, <-done)

	statuses := rec.all()
	require.Len(t, statuses, 2, "the ignored trigger renders nothing")
	assert.Equal(t, Busy, statuses[0].State)
	assert.Equal(t, Success, statuses[1].State)
}

func TestTestRunsWhileSaveIsBusy(t *testing.T) {
	capture := &fakeCapturer{
		release: make(chan struct{}),
		started: make(chan struct{}),
		result:  &recall.CaptureResult{ID: "7"},
		probe:   recall.ProbeResult{Status: recall.Reachable},
	}
	ctl, _, _ := newController(capture, Options{})

	done := make(chan error, 1)
	go func() {
		_, err := ctl.Save(withTab("https://a.com"), "")
		done <- err
	}()
	<-capture.started
	require.True(t, ctl.Busy(ActionSave))

	res, err := ctl.Test(context.Background(), "http://x")
	require.NoError(t, err)
	assert.Equal(t, recall.Reachable, res.Status)
	assert.False(t, ctl.Busy(ActionTest))
	assert.True(t, ctl.Busy(ActionSave), "save is still running")

	close(capture.release)
	require.NoError(t, <-done)
}

func TestTestUsesStoredURLWhenBlank(t *testing.T) {
	capture := &fakeCapturer{probe: recall.ProbeResult{Status: recall.Reachable}}
	ctl, rec, _ := newController(capture, DefaultOptions())

	res, err := ctl.Test(context.Background(), "  ")
	require.NoError(t, err)
	assert.Equal(t, recall.Reachable, res.Status)
	assert.Equal(t, []string{settings.DefaultServerURL}, capture.probed)

	statuses := rec.all()
	require.Len(t, statuses, 2)
	assert.Equal(t, "Testing...", statuses[0].Label)
	assert.Equal(t, "Testing connection...", statuses[0].Message)
	assert.Equal(t, "Connected successfully!", statuses[1].Message)
	assert.Equal(t, "Test Connection", statuses[1].Label)
}

func TestTestMessages(t *testing.T) {
	tests := []struct {
		probe recall.ProbeResult
		want  string
	}{
		{recall.ProbeResult{Status: recall.InvalidURL}, "Invalid URL"},
		{recall.ProbeResult{Status: recall.Unreachable, Reason: "cannot reach server"}, "Cannot reach server - check URL and ensure server is running"},
		{recall.ProbeResult{Status: recall.Unreachable, Reason: "server error: 503 Service Unavailable"}, "Server error: 503 Service Unavailable"},
		{recall.ProbeResult{Status: recall.Unreachable, Reason: "connection failed: tls"}, "Connection failed: tls"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			ctl, rec, _ := newController(&fakeCapturer{probe: tt.probe}, DefaultOptions())
			_, err := ctl.Test(context.Background(), "http://x")
			require.NoError(t, err)
			statuses := rec.all()
			require.Len(t, statuses, 2)
			assert.Equal(t, Failure, statuses[1].State)
			assert.Equal(t, tt.want, statuses[1].Message)
		})
	}
}

func TestSaveSettings(t *testing.T) {
	ctl, rec, resolver := newController(&fakeCapturer{}, Options{SettingsDisplay: 10 * time.Millisecond})
	defer ctl.Close()
	ctx := context.Background()

	clean, err := ctl.SaveSettings(ctx, " https://recall.example/ ")
	require.NoError(t, err)
	assert.Equal(t, "https://recall.example", clean)
	assert.Equal(t, "https://recall.example", resolver.ServerURL(ctx))

	_, err = ctl.SaveSettings(ctx, "not a url")
	var invalid *settings.ValidationError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "https://recall.example", resolver.ServerURL(ctx))

	messages := []string{}
	for _, s := range rec.all() {
		if s.State != Busy {
			messages = append(messages, s.Message)
		}
	}
	assert.Contains(t, messages, "Settings saved successfully!")
	assert.Contains(t, messages, "Please enter a valid URL")

	assert.Eventually(t, func() bool {
		all := rec.all()
		return all[len(all)-1].State == Idle
	}, time.Second, 5*time.Millisecond)
}

func TestResetDoesNotPersist(t *testing.T) {
	ctl, rec, resolver := newController(&fakeCapturer{}, DefaultOptions())
	defer ctl.Close()
	ctx := context.Background()

	_, err := resolver.SetServerURL(ctx, "https://recall.example")
	require.NoError(t, err)

	assert.Equal(t, settings.DefaultServerURL, ctl.Reset())
	assert.Equal(t, "https://recall.example", resolver.ServerURL(ctx))

	statuses := rec.all()
	require.Len(t, statuses, 1)
	assert.Equal(t, "Settings reset to default", statuses[0].Message)
}

func TestPrefill(t *testing.T) {
	ctl, _, resolver := newController(&fakeCapturer{}, DefaultOptions())
	ctx := withTab("https://a.com")
	require.NoError(t, resolver.SetCachedTags(ctx, "https://a.com", "go, web"))

	popup, err := ctl.Prefill(ctx)
	require.NoError(t, err)
	assert.Equal(t, Popup{URL: "https://a.com", Tags: "go, web"}, popup)

	_, err = ctl.Prefill(context.Background())
	assert.ErrorIs(t, err, recall.ErrNoActiveTab)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "Error: Cannot reach server - check URL and ensure server is running",
		Message(errors.Join(recall.ErrNetworkUnreachable, errors.New("dial"))))
	assert.Equal(t, "Error: invalid response",
		Message(&recall.TransportError{Message: "invalid response", Err: recall.ErrResponseMalformed}))
	assert.Equal(t, "Please enter a valid URL", Message(&settings.ValidationError{Value: "x"}))
}
