// Package keystore provides secret-capable key/value storage keyed by
// logical account name.
//
// Two implementations are provided:
//   - FileStore: an encrypted single-file store (scrypt-derived key,
//     XChaCha20-Poly1305 sealed), standing in for OS keychain storage
//   - MemStore: an in-memory store for tests
//
// Writes follow delete-then-add semantics: Set atomically replaces any
// prior value for the account, so a stale value never coexists with a
// new one. Get never fails on absence. Callers treat Set/Delete failures
// as best-effort: log the failure and continue.
package keystore
