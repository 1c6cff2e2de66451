// Package config loads hmectl settings from config.toml and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hmectl/hmectl/pkg/icloud"
	"github.com/spf13/afero"
)

const (
	// DirEnv overrides the config directory.
	DirEnv      = "HMECTL_CONFIG_DIR"
	ProxyEnv    = "HMECTL_PROXY"
	SetupURLEnv = "HMECTL_SETUP_URL"
	TimeoutEnv  = "HMECTL_TIMEOUT"

	FileName = "config.toml"
)

// Config holds the effective settings. Precedence from lowest to highest
// is defaults, config file, environment, command line flags.
type Config struct {
	SetupURL     string
	UserAgent    string
	Proxy        string
	Timeout      time.Duration
	DefaultLabel string
	DefaultNote  string
	// Browser makes login import from a browser by default: "auto" or
	// the path of a cookie store. Empty means no default.
	Browser string
}

type fileConfig struct {
	SetupURL     string `toml:"setup_url"`
	UserAgent    string `toml:"user_agent"`
	Proxy        string `toml:"proxy"`
	Timeout      string `toml:"timeout"`
	DefaultLabel string `toml:"default_label"`
	DefaultNote  string `toml:"default_note"`
	Browser      string `toml:"browser"`
}

func Default() Config {
	return Config{
		SetupURL:  icloud.DEF_SETUP_URL,
		UserAgent: icloud.DEF_USER_AGENT,
		Timeout:   icloud.DefaultTimeout,
	}
}

// Dir returns the config directory: $HMECTL_CONFIG_DIR when set, the
// user config directory otherwise.
func Dir(getenv func(string) string) (string, error) {
	dir := getenv(DirEnv)
	if dir == "" {
		ucd, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("locate config dir: %w", err)
		}
		dir = filepath.Join(ucd, "hmectl")
	}
	return filepath.Abs(dir)
}

// Load reads the config file at path on top of the defaults. A missing
// file is not an error unless required is set.
func Load(fs afero.Fs, path string, required bool) (Config, error) {
	cfg := Default()

	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	var raw fileConfig
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("setup_url") {
		cfg.SetupURL = strings.TrimSpace(raw.SetupURL)
	}
	if meta.IsDefined("user_agent") {
		cfg.UserAgent = strings.TrimSpace(raw.UserAgent)
	}
	if meta.IsDefined("proxy") {
		cfg.Proxy = strings.TrimSpace(raw.Proxy)
	}
	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if meta.IsDefined("default_label") {
		cfg.DefaultLabel = raw.DefaultLabel
	}
	if meta.IsDefined("default_note") {
		cfg.DefaultNote = raw.DefaultNote
	}
	if meta.IsDefined("browser") {
		cfg.Browser = strings.TrimSpace(raw.Browser)
	}
	return cfg, nil
}

// ApplyEnv overrides the settings that have an environment variable.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(ProxyEnv); v != "" {
		c.Proxy = v
	}
	if v := getenv(SetupURLEnv); v != "" {
		c.SetupURL = v
	}
	if v := getenv(TimeoutEnv); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", TimeoutEnv, err)
		}
		c.Timeout = d
	}
	return nil
}

// Save writes c to path in TOML, creating the directory if needed.
func Save(fs afero.Fs, path string, c Config) error {
	raw := fileConfig{
		SetupURL:     c.SetupURL,
		UserAgent:    c.UserAgent,
		Proxy:        c.Proxy,
		Timeout:      c.Timeout.String(),
		DefaultLabel: c.DefaultLabel,
		DefaultNote:  c.DefaultNote,
		Browser:      c.Browser,
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(raw); err != nil {
		f.Close()
		return fmt.Errorf("save config: %w", err)
	}
	return f.Close()
}
