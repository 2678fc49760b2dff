package noteflow

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mumblefish/noteflow/config"
	"github.com/mumblefish/noteflow/dictation"
	"github.com/mumblefish/noteflow/history"
	"github.com/mumblefish/noteflow/notify"
	"github.com/mumblefish/noteflow/polish"
	"github.com/mumblefish/noteflow/tone"
)

// Mode is the coordinator's editing mode.
type Mode string

// Editing modes.
const (
	// ModeComposing captures a brand-new note.
	ModeComposing Mode = "composing"

	// ModeEditing continues or re-polishes a saved note; Save replaces
	// the original instead of adding alongside it.
	ModeEditing Mode = "editing"
)

// editingContext tracks which saved note the current buffer descends
// from.
type editingContext struct {
	noteID string
}

// CoordinatorConfig holds configuration for Coordinator.
type CoordinatorConfig struct {
	// Session is the dictation session (required).
	Session *dictation.Session

	// Orchestrator issues polish requests (required).
	Orchestrator *polish.Orchestrator

	// History is the saved-note collection (required).
	History *history.Store

	// Settings are the resolved app settings; SelectedTone seeds the
	// active tone.
	Settings config.Settings

	// SettingsDir is where tone selections are persisted. Empty disables
	// persistence.
	SettingsDir string

	// Notifier receives state-change events. Defaults to a no-op.
	Notifier notify.Notifier

	// Logger receives warnings. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// Coordinator is the editing state machine tying dictation, polish, and
// history together. It decides what "save" means while creating,
// continuing, or re-polishing a note, and applies the one-time
// transcript concatenation when a continuation recording stops.
type Coordinator struct {
	session      *dictation.Session
	orchestrator *polish.Orchestrator
	history      *history.Store
	settingsDir  string
	notifier     notify.Notifier
	logger       zerolog.Logger

	mu         sync.Mutex
	settings   config.Settings
	tone       tone.Style
	editing    *editingContext
	concatBase string
	pendConcat bool
}

// NewCoordinator creates a Coordinator starting in composing mode with
// the settings' selected tone.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}

	return &Coordinator{
		session:      cfg.Session,
		orchestrator: cfg.Orchestrator,
		history:      cfg.History,
		settingsDir:  cfg.SettingsDir,
		notifier:     notifier,
		logger:       cfg.Logger,
		settings:     cfg.Settings,
		tone:         cfg.Settings.ToneStyle(),
	}
}

// Mode returns the current editing mode.
func (c *Coordinator) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing != nil {
		return ModeEditing
	}
	return ModeComposing
}

// Tone returns the active rewriting tone.
func (c *Coordinator) Tone() tone.Style {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tone
}

// Transcript returns the live transcript buffer.
func (c *Coordinator) Transcript() string {
	return c.session.Transcript()
}

// PolishedText returns the most recent polished result.
func (c *Coordinator) PolishedText() string {
	return c.orchestrator.LastResult()
}

// PolishError returns the user-facing message of the most recent polish
// failure, or empty.
func (c *Coordinator) PolishError() string {
	return c.orchestrator.LastError()
}

// SelectTone changes the active tone and persists the selection. When a
// polished result is already showing and the transcript is non-empty,
// the transcript is re-polished in the new tone so the display never
// mixes tones.
func (c *Coordinator) SelectTone(ctx context.Context, style tone.Style) error {
	c.mu.Lock()
	c.tone = style
	c.settings.SelectedTone = style.Label()
	settings := c.settings
	c.mu.Unlock()

	if c.settingsDir != "" {
		if err := config.Save(c.settingsDir, settings); err != nil {
			c.logger.Warn().Err(err).Msg("failed to persist tone selection")
		}
	}

	if c.orchestrator.LastResult() == "" {
		return nil
	}
	if strings.TrimSpace(c.session.Transcript()) == "" {
		return nil
	}
	return c.PolishTranscript(ctx)
}

// StartRecording opens a recording. A stale polish result never
// survives into a new take, so the orchestrator is reset first. In
// editing mode the seeded buffer is kept and the stop-time
// concatenation is armed; composing starts from an empty buffer.
func (c *Coordinator) StartRecording(ctx context.Context) {
	c.mu.Lock()
	appendMode := c.editing != nil
	if appendMode {
		c.concatBase = c.session.Transcript()
		c.pendConcat = true
	}
	c.mu.Unlock()

	c.orchestrator.Reset()
	c.session.Start(ctx, appendMode)

	if c.session.Recording() {
		c.notifier.Notify(notify.NewEvent(notify.EventRecordingStarted, ""))
	}
}

// StopRecording ends the recording. When a continuation was armed the
// prior text is joined with the new speech exactly once, with a single
// space between.
func (c *Coordinator) StopRecording() {
	wasRecording := c.session.Recording()
	c.session.Stop()

	c.mu.Lock()
	if c.pendConcat {
		c.pendConcat = false
		if text := c.session.Transcript(); text != "" {
			c.session.SetTranscript(c.concatBase + " " + text)
		}
		c.concatBase = ""
	}
	c.mu.Unlock()

	if wasRecording {
		c.notifier.Notify(notify.NewEvent(notify.EventRecordingStopped, ""))
	}
}

// PolishTranscript sends the current transcript for rewriting in the
// active tone and blocks until the request completes. The result and
// any failure are observable through PolishedText and PolishError.
func (c *Coordinator) PolishTranscript(ctx context.Context) error {
	text := c.session.Transcript()
	style := c.Tone()

	c.notifier.Notify(notify.NewEvent(notify.EventPolishStarted, ""))

	if _, err := c.orchestrator.Polish(ctx, text, style); err != nil {
		event := notify.NewEvent(notify.EventPolishFailed, polish.UserMessage(err))
		event.Severity = notify.SeverityWarning
		c.notifier.Notify(event)
		return err
	}

	c.notifier.Notify(notify.NewEvent(notify.EventPolishSucceeded, ""))
	return nil
}

// ContinueNote loads a saved note back into the editing buffer: the raw
// text becomes the transcript, the polished text is seeded as the
// result, and the note's tone becomes active. The next Save replaces
// the note.
func (c *Coordinator) ContinueNote(note history.Note) {
	c.mu.Lock()
	c.editing = &editingContext{noteID: note.ID}
	c.pendConcat = false
	c.concatBase = ""
	if style, ok := note.ToneStyle(); ok {
		c.tone = style
	}
	c.mu.Unlock()

	c.session.SetTranscript(note.RawText)
	c.orchestrator.SeedResult(note.PolishedText)
}

// RepolishNote loads a saved note and immediately re-polishes its raw
// text in the given tone. The next Save replaces the note.
func (c *Coordinator) RepolishNote(ctx context.Context, note history.Note, style tone.Style) error {
	c.mu.Lock()
	c.editing = &editingContext{noteID: note.ID}
	c.pendConcat = false
	c.concatBase = ""
	c.tone = style
	c.mu.Unlock()

	c.session.SetTranscript(note.RawText)
	return c.PolishTranscript(ctx)
}

// CancelEditing abandons the current buffer and returns to composing
// mode. The saved note is untouched.
func (c *Coordinator) CancelEditing() {
	c.mu.Lock()
	c.editing = nil
	c.pendConcat = false
	c.concatBase = ""
	c.mu.Unlock()

	c.session.SetTranscript("")
	c.orchestrator.Reset()
}

// Save persists the current buffer as a note. In editing mode the
// original note is replaced; either way the new note lands at the front
// of history and the buffer resets to composing.
//
// Saving with a polish request in flight fails with ErrPolishInFlight;
// a transcript that trims to empty fails with ErrNothingToSave.
func (c *Coordinator) Save() (history.Note, error) {
	if c.orchestrator.InFlight() {
		return history.Note{}, ErrPolishInFlight
	}

	rawText := c.session.Transcript()
	if strings.TrimSpace(rawText) == "" {
		return history.Note{}, ErrNothingToSave
	}

	note, err := history.NewNote(rawText, c.orchestrator.LastResult(), c.Tone())
	if err != nil {
		return history.Note{}, err
	}

	c.mu.Lock()
	editing := c.editing
	c.editing = nil
	c.pendConcat = false
	c.concatBase = ""
	c.mu.Unlock()

	if editing != nil {
		c.history.Delete(editing.noteID)
	}
	c.history.Add(note)

	c.session.SetTranscript("")
	c.orchestrator.Reset()

	event := notify.NewEvent(notify.EventNoteSaved, "")
	event.Metadata = map[string]any{"note_id": note.ID}
	c.notifier.Notify(event)

	return note, nil
}

// DeleteNote removes a saved note. Deleting the note currently being
// edited also abandons the edit.
func (c *Coordinator) DeleteNote(id string) {
	c.mu.Lock()
	editingThis := c.editing != nil && c.editing.noteID == id
	c.mu.Unlock()

	c.history.Delete(id)
	if editingThis {
		c.CancelEditing()
	}

	event := notify.NewEvent(notify.EventNoteDeleted, "")
	event.Metadata = map[string]any{"note_id": id}
	c.notifier.Notify(event)
}

// ClearHistory removes all saved notes and abandons any edit in
// progress.
func (c *Coordinator) ClearHistory() {
	c.history.Clear()

	c.mu.Lock()
	editing := c.editing != nil
	c.mu.Unlock()
	if editing {
		c.CancelEditing()
	}

	c.notifier.Notify(notify.NewEvent(notify.EventHistoryCleared, ""))
}

// State is a point-in-time snapshot of the coordinator for hosts that
// render it.
type State struct {
	Mode         Mode
	Recording    bool
	Transcript   string
	PolishedText string
	PolishError  string
	PolishBusy   bool
	Tone         tone.Style
}

// State returns a snapshot of the current editing state. The fields are
// read independently; a concurrent transition may land between them.
func (c *Coordinator) State() State {
	return State{
		Mode:         c.Mode(),
		Recording:    c.session.Recording(),
		Transcript:   c.session.Transcript(),
		PolishedText: c.orchestrator.LastResult(),
		PolishError:  c.orchestrator.LastError(),
		PolishBusy:   c.orchestrator.InFlight(),
		Tone:         c.Tone(),
	}
}
