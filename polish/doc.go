// Package polish issues remote text-polishing requests and tracks the
// single in-flight request state.
//
// Client speaks the polish service's wire contract: POST {text, tone} with
// either an X-OpenAI-Key header (bring-your-own-key) or an Authorization
// bearer header (signed in), never both, and a
// {success, data: {polished}, error} response envelope.
//
// Orchestrator layers the session rules on top: local precondition
// failures never reach the network, the previous result keeps showing
// while a new request is in flight, a 401 forces sign-out through the
// injected hook, and at most one request is in flight at a time.
package polish
