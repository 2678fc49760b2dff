// Package history persists completed notes as a single JSON document.
//
// Notes are immutable records ordered newest-first by insertion; editing a
// note is always delete-then-add, never in-place mutation. The store is the
// system of record for anything saved: every mutation persists the whole
// collection synchronously before returning.
//
// Persistence failures follow the log-and-continue policy. A missing
// document means an empty history; a document that fails to parse also
// means an empty history (logged, never surfaced), so a corrupt file can
// cost saved notes but never breaks the app.
package history
