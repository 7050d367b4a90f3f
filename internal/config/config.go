// Package config loads watcher configuration from defaults, an optional
// YAML file, and command-line flags (in that order of precedence).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/acceptd/acceptd/internal/policy"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "500ms" or "2s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the standard-library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full watcher configuration. Immutable after startup.
type Config struct {
	AcceptPattern  string   `yaml:"accept_pattern"`
	ConfirmPattern string   `yaml:"confirm_pattern"`
	WindowClass    string   `yaml:"window_class"`
	ProcessName    string   `yaml:"process_name"`
	SearchDepth    int      `yaml:"search_depth"`
	PreClickDelay  Duration `yaml:"pre_click_delay"`
	PollInterval   Duration `yaml:"poll_interval"`
	SettleDelay    Duration `yaml:"settle_delay"`
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		AcceptPattern:  policy.DefaultAcceptPattern,
		ConfirmPattern: policy.DefaultConfirmPattern,
		WindowClass:    policy.DefaultWindowClass,
		SearchDepth:    policy.DefaultSearchDepth,
		PreClickDelay:  Duration(policy.DefaultPreClickDelay),
		PollInterval:   Duration(policy.DefaultPollInterval),
		SettleDelay:    Duration(policy.DefaultSettleDelay),
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse config %s: %w", path, err)
	}
	return config, config.Validate()
}

// Validate checks that the configuration is usable: patterns compile and
// intervals keep the loop live.
func (c Config) Validate() error {
	if _, err := c.Rules(); err != nil {
		return err
	}
	if c.WindowClass == "" {
		return fmt.Errorf("window_class must not be empty")
	}
	if c.SearchDepth <= 0 {
		return fmt.Errorf("search_depth must be positive, got %d", c.SearchDepth)
	}
	if c.PollInterval.Std() <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval.Std())
	}
	if c.PreClickDelay.Std() < 0 || c.SettleDelay.Std() < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}

// Rules compiles the accept/confirm patterns.
func (c Config) Rules() (policy.RuleSet, error) {
	return policy.NewRuleSet(c.AcceptPattern, c.ConfirmPattern)
}
