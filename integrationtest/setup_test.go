// Package integrationtest exercises the full noteflow stack end to end
// against an in-process polish service.
package integrationtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mumblefish/noteflow"
	"github.com/mumblefish/noteflow/auth"
	"github.com/mumblefish/noteflow/dictation"
	"github.com/mumblefish/noteflow/testutil"
)

// env bundles a fully wired service stack with its fakes.
type env struct {
	svc    *noteflow.Services
	server *testutil.PolishServer
	engine *dictation.MockEngine
	opener *captureOpener
	dir    string
}

// captureOpener records sign-in URLs instead of opening a browser.
type captureOpener struct {
	urls []string
}

func (o *captureOpener) OpenURL(url string) error {
	o.urls = append(o.urls, url)
	return nil
}

// setup wires the full stack in a temp directory, pointed at a fake
// polish service.
func setup(t *testing.T) *env {
	t.Helper()

	server := testutil.NewPolishServer(t)
	t.Setenv("NOTEFLOW_SERVICE_BASE_URL", server.URL())

	e := &env{
		server: server,
		engine: &dictation.MockEngine{Authorized: true},
		opener: &captureOpener{},
		dir:    t.TempDir(),
	}

	svc, err := noteflow.NewServices(noteflow.ServicesConfig{
		DataDir:            e.dir,
		Engine:             e.engine,
		Opener:             e.opener,
		KeystorePassphrase: "integration-test",
	})
	require.NoError(t, err)
	e.svc = svc

	require.True(t, svc.Session.AwaitAuthorization(context.Background()),
		"session should be authorized")
	return e
}

// reopen builds a second stack over the same data directory, as a
// relaunch would.
func (e *env) reopen(t *testing.T) *noteflow.Services {
	t.Helper()

	svc, err := noteflow.NewServices(noteflow.ServicesConfig{
		DataDir:            e.dir,
		Engine:             &dictation.MockEngine{Authorized: true},
		Opener:             e.opener,
		KeystorePassphrase: "integration-test",
	})
	require.NoError(t, err)
	return svc
}

// record drives one start-emit-stop cycle through the mock engine.
func (e *env) record(t *testing.T, text string) {
	t.Helper()

	e.svc.Coordinator.StartRecording(context.Background())
	stream := e.engine.LastStream()
	require.NotNil(t, stream, "recording should open a stream")

	stream.Emit(text)
	require.Eventually(t, func() bool {
		return e.svc.Coordinator.Transcript() == text
	}, 2*time.Second, 5*time.Millisecond, "transcript should reach %q", text)

	e.svc.Coordinator.StopRecording()
	stream.Finish()
}

// signIn lands a session token through the OAuth callback path.
func (e *env) signIn(t *testing.T, token string) {
	t.Helper()

	e.svc.HandleCallback("mumblefish://auth/callback?token=" + token)
	require.True(t, e.svc.Auth.IsSignedIn(), "callback should sign the user in")
}

var _ auth.URLOpener = (*captureOpener)(nil)
