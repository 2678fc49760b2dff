package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mumblefish/noteflow/tone"
)

// Defaults.
const (
	DefaultServiceBaseURL = "https://mumble.fish"
	DefaultCallbackScheme = "mumblefish"

	envPrefix    = "noteflow"
	settingsFile = "settings.yaml"
)

// Settings holds the app's persisted preferences and service endpoints.
type Settings struct {
	// ServiceBaseURL is the polish service root.
	ServiceBaseURL string `yaml:"service_base_url" envconfig:"SERVICE_BASE_URL"`

	// CallbackScheme is the URL scheme for OAuth callbacks.
	CallbackScheme string `yaml:"callback_scheme" envconfig:"CALLBACK_SCHEME"`

	// SelectedTone is the last tone the user picked, persisted across
	// launches. Empty or unknown means no selection.
	SelectedTone string `yaml:"selected_tone" envconfig:"SELECTED_TONE"`
}

// Default returns settings with built-in defaults.
func Default() Settings {
	return Settings{
		ServiceBaseURL: DefaultServiceBaseURL,
		CallbackScheme: DefaultCallbackScheme,
		SelectedTone:   tone.Concise.Label(),
	}
}

// ToneStyle resolves the selected tone. Unknown values fall back to
// Concise, mirroring the selection default.
func (s Settings) ToneStyle() tone.Style {
	if style, ok := tone.Parse(s.SelectedTone); ok {
		return style
	}
	return tone.Concise
}

// Load resolves settings from dir/settings.yaml with environment
// overrides. A missing file yields defaults; an unreadable or
// unparseable file yields defaults with a warning.
func Load(dir string, logger zerolog.Logger) Settings {
	settings := Default()

	path := filepath.Join(dir, settingsFile)
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &settings); err != nil {
			settings = Default()
			logger.Warn().Err(err).Str("path", path).Msg("failed to parse settings, using defaults")
		}
	} else if !os.IsNotExist(err) {
		logger.Warn().Err(err).Str("path", path).Msg("failed to read settings, using defaults")
	}

	if err := envconfig.Process(envPrefix, &settings); err != nil {
		logger.Warn().Err(err).Msg("failed to apply settings env overrides")
	}

	// Never start with empty endpoints.
	if settings.ServiceBaseURL == "" {
		settings.ServiceBaseURL = DefaultServiceBaseURL
	}
	if settings.CallbackScheme == "" {
		settings.CallbackScheme = DefaultCallbackScheme
	}

	return settings
}

// Save writes settings to dir/settings.yaml.
func Save(dir string, settings Settings) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	path := filepath.Join(dir, settingsFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
