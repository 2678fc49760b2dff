package noteflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mumblefish/noteflow/config"
	"github.com/mumblefish/noteflow/dictation"
	"github.com/mumblefish/noteflow/history"
	"github.com/mumblefish/noteflow/notify"
	"github.com/mumblefish/noteflow/polish"
	"github.com/mumblefish/noteflow/tone"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// captureNotifier records event types in arrival order.
type captureNotifier struct {
	mu     sync.Mutex
	events []notify.EventType
}

func (n *captureNotifier) Notify(event notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event.Type)
}

func (n *captureNotifier) Events() []notify.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.EventType, len(n.events))
	copy(out, n.events)
	return out
}

type coordinatorEnv struct {
	engine   *dictation.MockEngine
	coord    *Coordinator
	history  *history.Store
	notifier *captureNotifier
	dir      string
	requests atomic.Int32
}

// newCoordinatorEnv wires a coordinator against a fake polish service.
// A nil handler installs the default one, which echoes the input
// prefixed with the requested tone.
func newCoordinatorEnv(t *testing.T, handler http.HandlerFunc) *coordinatorEnv {
	t.Helper()

	env := &coordinatorEnv{
		engine:   &dictation.MockEngine{Authorized: true},
		notifier: &captureNotifier{},
		dir:      t.TempDir(),
	}

	if handler == nil {
		handler = func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Text string `json:"text"`
				Tone string `json:"tone"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data":    map[string]string{"polished": "[" + req.Tone + "] " + req.Text},
			})
		}
	}
	counted := func(w http.ResponseWriter, r *http.Request) {
		env.requests.Add(1)
		handler(w, r)
	}
	server := httptest.NewServer(http.HandlerFunc(counted))
	t.Cleanup(server.Close)

	client := polish.NewClient(polish.ClientConfig{BaseURL: server.URL})
	orchestrator := polish.NewOrchestrator(polish.OrchestratorConfig{
		Client:      client,
		CanPolish:   func() bool { return true },
		Credentials: func() polish.Credentials { return polish.Credentials{AuthToken: "token"} },
	})

	store, err := history.NewStore(history.StoreConfig{Dir: env.dir})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	env.history = store

	session := dictation.NewSession(dictation.SessionConfig{Engine: env.engine})
	if !session.AwaitAuthorization(context.Background()) {
		t.Fatal("session not authorized")
	}

	env.coord = NewCoordinator(CoordinatorConfig{
		Session:      session,
		Orchestrator: orchestrator,
		History:      store,
		Settings:     config.Default(),
		SettingsDir:  env.dir,
		Notifier:     env.notifier,
	})
	return env
}

// record drives one start-emit-stop cycle through the mock engine.
func (env *coordinatorEnv) record(t *testing.T, text string) {
	t.Helper()

	env.coord.StartRecording(context.Background())
	stream := env.engine.LastStream()
	if stream == nil {
		t.Fatal("no stream opened")
	}
	stream.Emit(text)
	waitFor(t, func() bool { return env.coord.Transcript() == text })
	env.coord.StopRecording()
	stream.Finish()
}

func TestCoordinatorCaptureAndSave(t *testing.T) {
	env := newCoordinatorEnv(t, nil)
	c := env.coord

	env.record(t, "buy milk and eggs")

	if err := c.PolishTranscript(context.Background()); err != nil {
		t.Fatalf("PolishTranscript: %v", err)
	}
	if got, want := c.PolishedText(), "[concise] buy milk and eggs"; got != want {
		t.Fatalf("PolishedText = %q, want %q", got, want)
	}

	note, err := c.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if note.RawText != "buy milk and eggs" {
		t.Errorf("RawText = %q", note.RawText)
	}
	if note.PolishedText != "[concise] buy milk and eggs" {
		t.Errorf("PolishedText = %q", note.PolishedText)
	}
	if env.history.Len() != 1 {
		t.Fatalf("history Len = %d, want 1", env.history.Len())
	}

	// The buffer resets to composing after save.
	if c.Transcript() != "" || c.PolishedText() != "" {
		t.Errorf("buffer not reset: transcript %q, polished %q", c.Transcript(), c.PolishedText())
	}
	if c.Mode() != ModeComposing {
		t.Errorf("Mode = %q, want composing", c.Mode())
	}
}

func TestCoordinatorSaveEmptyTranscript(t *testing.T) {
	env := newCoordinatorEnv(t, nil)

	if _, err := env.coord.Save(); err != ErrNothingToSave {
		t.Fatalf("Save = %v, want ErrNothingToSave", err)
	}
	if env.history.Len() != 0 {
		t.Fatalf("history Len = %d, want 0", env.history.Len())
	}
}

func TestCoordinatorSaveWhilePolishInFlight(t *testing.T) {
	release := make(chan struct{})
	env := newCoordinatorEnv(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"polished": "done"},
		})
	})
	defer close(release)
	c := env.coord

	env.record(t, "slow request")

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.PolishTranscript(context.Background())
	}()
	waitFor(t, func() bool { return c.State().PolishBusy })

	if _, err := c.Save(); err != ErrPolishInFlight {
		t.Fatalf("Save = %v, want ErrPolishInFlight", err)
	}

	release <- struct{}{}
	<-done
}

func TestCoordinatorContinueNote(t *testing.T) {
	env := newCoordinatorEnv(t, nil)
	c := env.coord

	saved, err := history.NewNote("original text", "Original, polished.", tone.Casual)
	if err != nil {
		t.Fatalf("NewNote: %v", err)
	}
	env.history.Add(saved)

	c.ContinueNote(saved)
	if c.Mode() != ModeEditing {
		t.Fatalf("Mode = %q, want editing", c.Mode())
	}
	if c.Transcript() != "original text" {
		t.Errorf("Transcript = %q", c.Transcript())
	}
	if c.PolishedText() != "Original, polished." {
		t.Errorf("PolishedText = %q", c.PolishedText())
	}
	if c.Tone() != tone.Casual {
		t.Errorf("Tone = %q, want casual", c.Tone())
	}

	// New speech joins the prior text once, with a single space.
	env.record(t, "and some more")
	if got, want := c.Transcript(), "original text and some more"; got != want {
		t.Fatalf("Transcript = %q, want %q", got, want)
	}

	// A second take while still editing joins onto the combined text.
	env.record(t, "third part")
	if got, want := c.Transcript(), "original text and some more third part"; got != want {
		t.Fatalf("Transcript = %q, want %q", got, want)
	}

	note, err := c.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if env.history.Len() != 1 {
		t.Fatalf("history Len = %d, want 1 (replaced)", env.history.Len())
	}
	if _, ok := env.history.Get(saved.ID); ok {
		t.Error("original note still present after replacement")
	}
	if _, ok := env.history.Get(note.ID); !ok {
		t.Error("replacement note missing")
	}
	if c.Mode() != ModeComposing {
		t.Errorf("Mode = %q, want composing after save", c.Mode())
	}
}

func TestCoordinatorCancelEditing(t *testing.T) {
	env := newCoordinatorEnv(t, nil)
	c := env.coord

	saved, err := history.NewNote("keep me", "Keep me.", tone.Formal)
	if err != nil {
		t.Fatalf("NewNote: %v", err)
	}
	env.history.Add(saved)

	c.ContinueNote(saved)
	c.CancelEditing()

	if c.Mode() != ModeComposing {
		t.Errorf("Mode = %q, want composing", c.Mode())
	}
	if c.Transcript() != "" || c.PolishedText() != "" {
		t.Errorf("buffer not cleared: %q / %q", c.Transcript(), c.PolishedText())
	}
	if _, ok := env.history.Get(saved.ID); !ok {
		t.Error("saved note touched by cancel")
	}
}

func TestCoordinatorRepolishNote(t *testing.T) {
	env := newCoordinatorEnv(t, nil)
	c := env.coord

	saved, err := history.NewNote("rewrite me", "Old polish.", tone.Casual)
	if err != nil {
		t.Fatalf("NewNote: %v", err)
	}
	env.history.Add(saved)

	if err := c.RepolishNote(context.Background(), saved, tone.Formal); err != nil {
		t.Fatalf("RepolishNote: %v", err)
	}
	if got, want := c.PolishedText(), "[formal] rewrite me"; got != want {
		t.Fatalf("PolishedText = %q, want %q", got, want)
	}
	if c.Mode() != ModeEditing {
		t.Errorf("Mode = %q, want editing", c.Mode())
	}
	if c.Tone() != tone.Formal {
		t.Errorf("Tone = %q, want formal", c.Tone())
	}
}

func TestCoordinatorSelectTone(t *testing.T) {
	env := newCoordinatorEnv(t, nil)
	c := env.coord

	// Without a showing result, changing tone touches nothing remote.
	if err := c.SelectTone(context.Background(), tone.Friendly); err != nil {
		t.Fatalf("SelectTone: %v", err)
	}
	if got := env.requests.Load(); got != 0 {
		t.Fatalf("requests = %d, want 0", got)
	}
	if c.Tone() != tone.Friendly {
		t.Errorf("Tone = %q, want friendly", c.Tone())
	}

	// The selection survives a reload.
	reloaded := config.Load(env.dir, zerolog.Nop())
	if got := reloaded.ToneStyle(); got != tone.Friendly {
		t.Errorf("persisted tone = %q, want friendly", got)
	}

	// With a result showing, the transcript is re-polished in the new
	// tone.
	env.record(t, "tone matters")
	if err := c.PolishTranscript(context.Background()); err != nil {
		t.Fatalf("PolishTranscript: %v", err)
	}
	if err := c.SelectTone(context.Background(), tone.Professional); err != nil {
		t.Fatalf("SelectTone: %v", err)
	}
	if got, want := c.PolishedText(), "[professional] tone matters"; got != want {
		t.Fatalf("PolishedText = %q, want %q", got, want)
	}
	if got := env.requests.Load(); got != 2 {
		t.Fatalf("requests = %d, want 2", got)
	}
}

func TestCoordinatorStartRecordingClearsStaleResult(t *testing.T) {
	env := newCoordinatorEnv(t, nil)
	c := env.coord

	env.record(t, "first take")
	if err := c.PolishTranscript(context.Background()); err != nil {
		t.Fatalf("PolishTranscript: %v", err)
	}

	c.StartRecording(context.Background())
	defer c.StopRecording()

	if c.PolishedText() != "" {
		t.Errorf("stale polished text survived into new take: %q", c.PolishedText())
	}
	if c.Transcript() != "" {
		t.Errorf("stale transcript survived into new take: %q", c.Transcript())
	}
}

func TestCoordinatorDeleteEditedNote(t *testing.T) {
	env := newCoordinatorEnv(t, nil)
	c := env.coord

	saved, err := history.NewNote("doomed", "Doomed.", tone.Concise)
	if err != nil {
		t.Fatalf("NewNote: %v", err)
	}
	env.history.Add(saved)

	c.ContinueNote(saved)
	c.DeleteNote(saved.ID)

	if env.history.Len() != 0 {
		t.Fatalf("history Len = %d, want 0", env.history.Len())
	}
	if c.Mode() != ModeComposing {
		t.Errorf("Mode = %q, want composing after deleting edited note", c.Mode())
	}
	if c.Transcript() != "" {
		t.Errorf("Transcript = %q, want empty", c.Transcript())
	}
}

func TestCoordinatorClearHistory(t *testing.T) {
	env := newCoordinatorEnv(t, nil)

	for _, text := range []string{"one", "two"} {
		note, err := history.NewNote(text, "", tone.Concise)
		if err != nil {
			t.Fatalf("NewNote: %v", err)
		}
		env.history.Add(note)
	}

	env.coord.ClearHistory()
	if env.history.Len() != 0 {
		t.Fatalf("history Len = %d, want 0", env.history.Len())
	}
}

func TestCoordinatorEventOrder(t *testing.T) {
	env := newCoordinatorEnv(t, nil)
	c := env.coord

	env.record(t, "eventful")
	if err := c.PolishTranscript(context.Background()); err != nil {
		t.Fatalf("PolishTranscript: %v", err)
	}
	if _, err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	want := []notify.EventType{
		notify.EventRecordingStarted,
		notify.EventRecordingStopped,
		notify.EventPolishStarted,
		notify.EventPolishSucceeded,
		notify.EventNoteSaved,
	}
	got := env.notifier.Events()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
