package integrationtest

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mumblefish/noteflow/polish"
	"github.com/mumblefish/noteflow/testutil"
)

// TestSignInFlow walks the browser sign-in round trip: begin opens the
// provider URL, the callback lands the token, and the session survives
// a relaunch.
func TestSignInFlow(t *testing.T) {
	e := setup(t)

	require.NoError(t, e.svc.Auth.BeginSignIn("google"))
	require.Len(t, e.opener.urls, 1)
	assert.Contains(t, e.opener.urls[0], "/api/v1/auth/oauth/google")
	assert.Contains(t, e.opener.urls[0], "redirect_uri=mumblefish%3A%2F%2Fauth%2Fcallback")

	token := testutil.SignedToken(t, "user-42", time.Now().Add(time.Hour))
	e.signIn(t, token)
	assert.True(t, e.svc.Auth.CanPolish())

	relaunched := e.reopen(t)
	assert.True(t, relaunched.Auth.IsSignedIn(), "session should survive relaunch")
	assert.Equal(t, token, relaunched.Auth.AuthToken())
}

// TestBYOKHeaderPriority verifies the key header wins over the bearer
// token when both credentials are available, and that the two are never
// sent together.
func TestBYOKHeaderPriority(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	e.signIn(t, testutil.SignedToken(t, "user-7", time.Now().Add(time.Hour)))
	e.svc.Auth.SetBYOKKey("sk-priority")

	e.record(t, "which header wins")
	require.NoError(t, e.svc.Coordinator.PolishTranscript(ctx))

	sent := e.server.LastRequest(t)
	assert.Equal(t, "sk-priority", sent.BYOKKey)
	assert.Empty(t, sent.Bearer, "bearer token must not accompany the BYOK key")

	// Clearing the key falls back to the session token.
	e.svc.Auth.SetBYOKKey("")
	require.NoError(t, e.svc.Coordinator.PolishTranscript(ctx))

	sent = e.server.LastRequest(t)
	assert.Empty(t, sent.BYOKKey)
	assert.NotEmpty(t, sent.Bearer)
}

// TestSessionExpirySignsOut verifies a rejected token signs the user
// out and surfaces the session-expired message.
func TestSessionExpirySignsOut(t *testing.T) {
	e := setup(t)
	c := e.svc.Coordinator
	ctx := context.Background()

	e.signIn(t, testutil.SignedToken(t, "user-9", time.Now().Add(time.Hour)))
	e.record(t, "this one gets rejected")

	e.server.FailWith(http.StatusUnauthorized)
	err := c.PolishTranscript(ctx)
	require.Error(t, err)
	assert.True(t, polish.IsSessionExpired(err))

	assert.False(t, e.svc.Auth.IsSignedIn(), "401 should sign the user out")
	assert.Equal(t, polish.MsgSessionExpired, c.PolishError())
}

// TestRateLimitKeepsSession verifies a rate-limited request surfaces
// its message without touching the session.
func TestRateLimitKeepsSession(t *testing.T) {
	e := setup(t)
	c := e.svc.Coordinator
	ctx := context.Background()

	e.signIn(t, testutil.SignedToken(t, "user-11", time.Now().Add(time.Hour)))
	e.record(t, "too many requests")

	e.server.FailWith(http.StatusTooManyRequests)
	err := c.PolishTranscript(ctx)
	require.Error(t, err)
	assert.True(t, polish.IsRateLimited(err))

	assert.True(t, e.svc.Auth.IsSignedIn(), "429 must not sign the user out")
	assert.Equal(t, polish.MsgRateLimited, c.PolishError())

	// Recovery needs no new sign-in.
	e.server.Succeed()
	require.NoError(t, c.PolishTranscript(ctx))
	assert.True(t, strings.HasPrefix(c.PolishedText(), "[concise] "))
}

// TestIgnoredCallbacks verifies error and tokenless callbacks change
// nothing.
func TestIgnoredCallbacks(t *testing.T) {
	e := setup(t)

	for _, rawURL := range []string{
		"mumblefish://auth/callback?error=access_denied",
		"mumblefish://auth/callback",
		"mumblefish://auth/callback?token=",
	} {
		e.svc.HandleCallback(rawURL)
		assert.False(t, e.svc.Auth.IsSignedIn(), "callback %q should be ignored", rawURL)
	}
}
