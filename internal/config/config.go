// Package config persists the apply_patch CLI policy: whether incoming
// patches are applied, refused, or applied with a warning banner, plus
// optional custom banner texts. The configuration is read once at startup and
// handed to the CLI explicitly; the patch engine never sees it.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"
)

// Mode selects what the CLI does with an incoming patch.
type Mode string

const (
	ModeApply  Mode = "apply"
	ModeRefuse Mode = "refuse"
	ModeWarn   Mode = "warn"
)

// ParseMode maps a flag value onto a Mode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeApply, ModeRefuse, ModeWarn:
		return Mode(s), true
	}
	return "", false
}

// Config is the persisted policy. Nil message pointers mean "use the
// built-in default banner".
type Config struct {
	Mode          Mode    `json:"mode"`
	RefuseMessage *string `json:"refuse_message,omitempty"`
	WarnMessage   *string `json:"warn_message,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{Mode: ModeApply}
}

// EnvVar overrides the config file location when set.
const EnvVar = "APPLY_PATCH_CONFIG"

// Path resolves the config file location: $APPLY_PATCH_CONFIG when set,
// otherwise $XDG_CONFIG_HOME/.apply_patch/config.json, falling back to the
// same path under $HOME.
func Path() (string, error) {
	if path := os.Getenv(EnvVar); path != "" {
		return path, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = os.Getenv("HOME")
	}
	if base == "" {
		return "", errors.New("could not determine config path (HOME/XDG_CONFIG_HOME not set)")
	}
	return filepath.Join(base, ".apply_patch", "config.json"), nil
}

// schemaJSON pins the shape of the persisted file so a corrupted or
// hand-edited config degrades to defaults instead of smuggling garbage into
// the run.
const schemaJSON = `{
  "type": "object",
  "properties": {
    "mode": {"type": "string", "enum": ["apply", "refuse", "warn"]},
    "refuse_message": {"type": ["string", "null"]},
    "warn_message": {"type": ["string", "null"]}
  },
  "additionalProperties": false
}`

// Load reads the config at path. Missing, unreadable, malformed, and
// schema-invalid files all yield the defaults; a config problem must never
// block patching.
func Load(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default()
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil || !result.Valid() {
		return Default()
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default()
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeApply
	}
	return cfg
}

// Save writes cfg via a temporary file and rename, creating parent
// directories as needed.
func Save(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
