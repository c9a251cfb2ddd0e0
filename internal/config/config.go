// Package config implements the engine's on-disk user configuration: custom
// shortcut bindings, voice parameters, punctuation verbosity, and log
// level, loaded from a TOML file. The load/save/defaulting shape is
// grounded on NoiseTorch's config.go.
package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// PunctuationVerbosity is a stored punctuation-expansion setting; it is
// loaded and saved with the config file, and no other part of the engine
// reads it.
type PunctuationVerbosity string

const (
	PunctuationNone PunctuationVerbosity = "none"
	PunctuationSome PunctuationVerbosity = "some"
	PunctuationAll  PunctuationVerbosity = "all"
)

// ShortcutOverride rebinds one chord to a named action, keyed the same way
// as the runtime shortcut table: browseMode/ctrl/option/cmd/shift/keyCode.
type ShortcutOverride struct {
	Action     string
	BrowseMode bool
	Ctrl       bool
	Option     bool
	Cmd        bool
	Shift      bool
	KeyCode    int
}

// Config is the full on-disk user configuration.
type Config struct {
	LogLevel              string
	VoiceIdentifier        string
	VoiceRate              float64
	VoiceVolume            float64
	PunctuationVerbosity  PunctuationVerbosity
	GatewayTimeoutSeconds float64
	Shortcuts             []ShortcutOverride
}

const fileName = "config.toml"

// Default returns the engine's built-in default configuration, used both
// to seed a freshly initialized config file and as the in-memory fallback
// if the file cannot be parsed.
func Default() Config {
	return Config{
		LogLevel:              "info",
		VoiceRate:             1.0,
		VoiceVolume:           1.0,
		PunctuationVerbosity:  PunctuationSome,
		GatewayTimeoutSeconds: 5.0,
	}
}

// Dir resolves the configuration directory, preferring $XDG_CONFIG_HOME and
// falling back to ~/.config, following the same resolution NoiseTorch uses
// for its own settings file.
func Dir() string {
	return filepath.Join(xdgOrFallback("XDG_CONFIG_HOME", filepath.Join(os.Getenv("HOME"), ".config")), "voshd")
}

// EnsureInitialized writes the default config to disk if no config file
// exists yet.
func EnsureInitialized(log *slog.Logger) error {
	dir := Dir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	path := filepath.Join(dir, fileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if log != nil {
			log.Info("initializing default config", "path", path)
		}
		return Write(Default())
	}
	return nil
}

// Load reads the config file at Dir()/config.toml, falling back to the
// Default() on any read/parse error (logged, never fatal — the engine
// should still run with sane defaults).
func Load(log *slog.Logger) Config {
	path := filepath.Join(Dir(), fileName)
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if log != nil {
			log.Warn("falling back to default config", "path", path, "error", err)
		}
		return Default()
	}
	return cfg
}

// LoadFrom reads a config from an explicit path, used by the CLI's
// --config flag.
func LoadFrom(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	return cfg, err
}

// Write serializes cfg to Dir()/config.toml.
func Write(cfg Config) error {
	path := filepath.Join(Dir(), fileName)
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(&cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func xdgOrFallback(xdg, fallback string) string {
	if dir := os.Getenv(xdg); dir != "" {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
	}
	return fallback
}
