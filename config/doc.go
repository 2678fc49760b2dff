// Package config loads and saves the app's settings file.
//
// Settings resolve in three layers: built-in defaults, then the YAML
// settings file, then NOTEFLOW_* environment variables. The file also
// remembers the last selected tone across launches. Load failures fall
// back to defaults with a warning; settings are never a reason the app
// cannot start.
package config
