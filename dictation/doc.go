// Package dictation wraps a streaming transcription engine and owns the
// recording lifecycle and the live transcript buffer.
//
// The engine itself is an external capability behind the Engine interface:
// it answers a one-time authorization query and opens hypothesis streams.
// Each hypothesis delivered on a stream is the engine's full current best
// guess, so the session REPLACES the transcript buffer on every result
// rather than appending. Continuing a prior note is a one-time string
// concatenation performed by the caller at stop time, not a running append.
//
// A recording ends either when the caller stops it or when the engine
// terminates on its own (final hypothesis or engine error); both paths run
// the same teardown and are safe to race.
package dictation
