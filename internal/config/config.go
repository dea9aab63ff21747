package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/3leaps/cefcheck/internal/host/cef"
	"github.com/3leaps/cefcheck/internal/pin"
	"github.com/3leaps/cefcheck/pkg/update"
)

// Config holds every setting of the version check. The index URL and the
// platform lists are configuration, not package constants, so the selection
// policy can be exercised with any of them.
type Config struct {
	IndexURL          string        `yaml:"index_url"`
	PinFile           string        `yaml:"pin_file"`
	PinMacro          string        `yaml:"pin_macro"`
	MainPlatform      string        `yaml:"main_platform"`
	RequiredPlatforms []string      `yaml:"required_platforms"`
	Channel           string        `yaml:"channel"`
	BetaMarker        string        `yaml:"beta_marker"`
	Timeout           time.Duration `yaml:"timeout"`

	Signature SignatureConfig `yaml:"signature"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SignatureConfig enables minisign verification of the fetched index.
type SignatureConfig struct {
	Sig    string `yaml:"sig,omitempty"`
	PubKey string `yaml:"pubkey,omitempty"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

const (
	DefaultPinFile      = "src/updater/cef_binary.rs"
	DefaultMainPlatform = "windows64"
)

// DefaultRequiredPlatforms are the platforms a release must be published
// for before it is accepted.
var DefaultRequiredPlatforms = []string{"windows64", "linux64", "macosx64"}

func Default() *Config {
	return &Config{
		IndexURL:          cef.DefaultIndexURL,
		PinFile:           DefaultPinFile,
		PinMacro:          pin.DefaultMacro,
		MainPlatform:      DefaultMainPlatform,
		RequiredPlatforms: append([]string(nil), DefaultRequiredPlatforms...),
		Channel:           string(update.DefaultChannel),
		BetaMarker:        update.DefaultBetaMarker,
		Timeout:           cef.DefaultTimeout,
		Logging:           LoggingConfig{Level: "info"},
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path returns the defaults. Unknown keys are rejected.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file %s not found", path)
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.IndexURL) == "" {
		problems = append(problems, "index_url: missing")
	} else if !strings.HasPrefix(c.IndexURL, "https://") && !strings.HasPrefix(c.IndexURL, "http://") {
		problems = append(problems, fmt.Sprintf("index_url: unsupported scheme in %q (supported: http, https)", c.IndexURL))
	}
	if strings.TrimSpace(c.PinFile) == "" {
		problems = append(problems, "pin_file: missing")
	}
	if strings.TrimSpace(c.PinMacro) == "" {
		problems = append(problems, "pin_macro: missing")
	}
	if strings.TrimSpace(c.MainPlatform) == "" {
		problems = append(problems, "main_platform: missing")
	}
	for i, p := range c.RequiredPlatforms {
		if strings.TrimSpace(p) == "" {
			problems = append(problems, fmt.Sprintf("required_platforms[%d]: empty", i))
		}
	}
	if strings.TrimSpace(c.Channel) == "" {
		problems = append(problems, "channel: missing")
	}
	if strings.TrimSpace(c.BetaMarker) == "" {
		problems = append(problems, "beta_marker: missing")
	}
	if c.Timeout <= 0 {
		problems = append(problems, fmt.Sprintf("timeout: must be > 0 (got %s)", c.Timeout))
	}
	if (c.Signature.Sig == "") != (c.Signature.PubKey == "") {
		problems = append(problems, "signature: sig and pubkey must be set together")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level: unsupported %q (supported: debug, info, warn, error)", c.Logging.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
