// Package workflow drives the user-facing actions: save the active page, test a
// server URL, save or reset the settings form. Every outcome is reported to a
// single Renderer as a Status.
package workflow

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dkolesni-prog/recall/internal/recall"
	"github.com/dkolesni-prog/recall/internal/settings"
)

type Action string

const (
	ActionSave     Action = "save"
	ActionTest     Action = "test"
	ActionSettings Action = "settings"
	ActionReset    Action = "reset"
)

type State int

const (
	Idle State = iota
	Busy
	Success
	Failure
)

func (s State) String() string {
	switch s {
	case Busy:
		return "busy"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "idle"
	}
}

// Status is one rendering of an action. Label is the text of the action's
// control; an Idle status with an empty Message hides the status line.
type Status struct {
	RunID   uuid.UUID
	Action  Action
	State   State
	Label   string
	Message string
}

type Renderer interface {
	Render(Status)
}

type RendererFunc func(Status)

func (f RendererFunc) Render(s Status) {
	f(s)
}

const (
	msgSaving          = "Saving page to Recall..."
	msgTesting         = "Testing connection..."
	msgConnected       = "Connected successfully!"
	msgInvalidURL      = "Invalid URL"
	msgCannotReach     = "Cannot reach server - check URL and ensure server is running"
	msgSettingsSaved   = "Settings saved successfully!"
	msgSettingsInvalid = "Please enter a valid URL"
	msgSettingsError   = "Error saving settings"
	msgSettingsReset   = "Settings reset to default"
)

var idleLabels = map[Action]string{
	ActionSave:     "Save Page",
	ActionTest:     "Test Connection",
	ActionSettings: "Save Settings",
	ActionReset:    "Reset",
}

var busyLabels = map[Action]string{
	ActionSave:     "Saving...",
	ActionTest:     "Testing...",
	ActionSettings: "Saving...",
}

// Message turns a capture error into the line shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var (
		validation *settings.ValidationError
		rejected   *recall.ServerRejectedError
		transport  *recall.TransportError
	)
	switch {
	case errors.As(err, &validation):
		return msgSettingsInvalid
	case errors.Is(err, recall.ErrNoActiveTab):
		return "Error: No active tab found"
	case errors.Is(err, recall.ErrNetworkUnreachable):
		return "Error: " + msgCannotReach
	case errors.As(err, &rejected):
		return "Error: " + rejected.Body
	case errors.As(err, &transport):
		return "Error: " + transport.Message
	default:
		return "Error: " + err.Error()
	}
}

// SavedMessage is the line shown after a successful capture.
func SavedMessage(id recall.CaptureID) string {
	return fmt.Sprintf("✓ Saved successfully (ID: %s)", id)
}

// ProbeMessage is the line shown for a connection test outcome.
func ProbeMessage(res recall.ProbeResult) string {
	switch res.Status {
	case recall.Reachable:
		return msgConnected
	case recall.InvalidURL:
		return msgInvalidURL
	}
	if res.Reason == recall.ErrNetworkUnreachable.Error() {
		return msgCannotReach
	}
	return capitalize(res.Reason)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
