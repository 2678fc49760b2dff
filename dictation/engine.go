package dictation

import "context"

// Result is one incremental hypothesis from the engine. Text is the full
// current best hypothesis, not a delta. Final marks the engine's last
// result for this stream; Err reports an engine failure. Either ends the
// recording.
type Result struct {
	Text  string
	Final bool
	Err   error
}

// Stream is one live transcription stream.
type Stream interface {
	// Results delivers incremental hypotheses. The channel is closed
	// when the engine terminates the stream.
	Results() <-chan Result

	// EndAudio signals that no more audio will arrive, prompting the
	// engine to deliver its final hypothesis.
	EndAudio()

	// Close releases engine resources. Safe to call more than once.
	Close()
}

// Engine is the external speech-to-text capability.
type Engine interface {
	// RequestAuthorization asks the platform for speech-recognition
	// permission. Queried once at session startup and cached.
	RequestAuthorization(ctx context.Context) (bool, error)

	// Start opens a streaming transcription.
	Start(ctx context.Context) (Stream, error)
}
