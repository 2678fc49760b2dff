// Package noteflow provides the capture-and-polish orchestration core for
// dictated voice notes.
//
// The package is organized into subpackages by domain:
//
//   - keystore: secret-capable credential storage by account name
//   - auth: sign-in state, OAuth callback ingestion, polish entitlement
//   - dictation: recording lifecycle over a streaming transcription engine
//   - polish: the remote polish client and single-flight orchestrator
//   - history: persisted newest-first note collection
//   - tone: the closed set of rewriting styles
//   - config: settings file with environment overrides
//   - notify: state-change events for hosts
//   - testutil: test fixtures
//
// The root package ties them together: Coordinator is the editing state
// machine deciding what "save" means while creating, continuing, or
// re-polishing a note, and Services constructs the whole stack with
// explicit dependencies.
//
// # Quick Start
//
//	svc, _ := noteflow.NewServices(noteflow.ServicesConfig{
//	    DataDir: dataDir,
//	    Engine:  engine, // platform speech-to-text capability
//	    Opener:  opener, // platform browser opener
//	})
//
//	svc.Coordinator.StartRecording(ctx)
//	// ... speech arrives ...
//	svc.Coordinator.StopRecording()
//	svc.Coordinator.PolishTranscript(ctx)
//	svc.Coordinator.Save()
//
// See individual package documentation for detailed usage.
package noteflow
