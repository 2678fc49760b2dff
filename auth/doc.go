// Package auth derives sign-in state and polish entitlement from the
// credential store.
//
// The Manager owns three independent credential accounts: the service
// auth token, the cached user email, and the bring-your-own-key (BYOK)
// API key. Sign-in happens out of process: BeginSignIn opens the
// service's authorization URL in the browser and the app later receives
// a callback URL carrying the token. HandleCallback silently ignores
// callbacks with an error parameter or no token; nothing changes.
//
// Entitlement ("can polish") is signed-in OR a non-empty BYOK key, and is
// recomputed on every query rather than cached, so credential mutations
// take effect immediately.
package auth
