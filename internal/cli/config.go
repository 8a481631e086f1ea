package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/raml2postman/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const apiKeyEnv = "POSTMAN_API_KEY"

// Config captures all inputs that influence a command after merging
// defaults, config file values, the environment and CLI overrides.
type Config struct {
	Input      string
	APIKey     string
	Name       string
	BaseURL    string
	Out        string
	Upload     bool
	Nested     bool
	PostmanURL string
	Timeout    time.Duration
	DryRun     bool
	Force      bool
	Verbose    bool
	LogFormat  string
	Pretty     bool
	NoPretty   bool
	ConfigPath string
}

func defaultConfig() Config {
	return Config{Upload: true, Timeout: 30 * time.Second, LogFormat: "text"}
}

// loadConfig layers defaults, the --config file, flags and finally the
// POSTMAN_API_KEY environment variable when no key was given.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	cfg := defaultConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	if cfg.APIKey == "" {
		cfg.APIKey = strings.TrimSpace(os.Getenv(apiKeyEnv))
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func changed(flags *pflag.FlagSet, name string) bool {
	return flags.Lookup(name) != nil && flags.Changed(name)
}

func applyFlagOverrides(flags *pflag.FlagSet, cfg *Config) error {
	strs := []struct {
		flag string
		dst  *string
	}{
		{"key", &cfg.APIKey},
		{"name", &cfg.Name},
		{"base-url", &cfg.BaseURL},
		{"out", &cfg.Out},
		{"postman-url", &cfg.PostmanURL},
		{"log-format", &cfg.LogFormat},
	}
	for _, s := range strs {
		if !changed(flags, s.flag) {
			continue
		}
		value, err := flags.GetString(s.flag)
		if err != nil {
			return err
		}
		*s.dst = strings.TrimSpace(value)
	}

	bools := []struct {
		flag string
		dst  *bool
	}{
		{"nested", &cfg.Nested},
		{"dry-run", &cfg.DryRun},
		{"force", &cfg.Force},
		{"verbose", &cfg.Verbose},
		{"pretty", &cfg.Pretty},
		{"no-pretty", &cfg.NoPretty},
	}
	for _, b := range bools {
		if !changed(flags, b.flag) {
			continue
		}
		value, err := flags.GetBool(b.flag)
		if err != nil {
			return err
		}
		*b.dst = value
	}

	if changed(flags, "no-upload") {
		value, err := flags.GetBool("no-upload")
		if err != nil {
			return err
		}
		cfg.Upload = !value
	}
	if changed(flags, "timeout") {
		value, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = value
	}
	return nil
}

func (c *Config) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.Name = strings.TrimSpace(c.Name)
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.Out = strings.TrimSpace(c.Out)
	c.PostmanURL = strings.TrimSpace(c.PostmanURL)
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

func (c *Config) validate() error {
	if !logging.ValidFormat(c.LogFormat) {
		return newUsageError(fmt.Sprintf("unsupported --log-format %q (allowed: text, json)", c.LogFormat))
	}
	if c.Timeout < 0 {
		return newUsageError(fmt.Sprintf("--timeout must not be negative, got %s", c.Timeout))
	}
	if c.Pretty && c.NoPretty {
		return newUsageError("cannot set both --pretty and --no-pretty")
	}
	return nil
}

func (c *Config) logLevel() string {
	if c.Verbose {
		return "debug"
	}
	return "info"
}

func applyConfigFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		var ferr error
		switch normalizeKey(key) {
		case "input":
			cfg.Input, ferr = valueAsString(value)
		case "apikey", "key":
			cfg.APIKey, ferr = valueAsString(value)
		case "name":
			cfg.Name, ferr = valueAsString(value)
		case "baseurl":
			cfg.BaseURL, ferr = valueAsString(value)
		case "out":
			cfg.Out, ferr = valueAsString(value)
		case "postmanurl":
			cfg.PostmanURL, ferr = valueAsString(value)
		case "logformat":
			cfg.LogFormat, ferr = valueAsString(value)
		case "upload":
			cfg.Upload, ferr = valueAsBool(value)
		case "nested":
			cfg.Nested, ferr = valueAsBool(value)
		case "dryrun":
			cfg.DryRun, ferr = valueAsBool(value)
		case "force":
			cfg.Force, ferr = valueAsBool(value)
		case "verbose":
			cfg.Verbose, ferr = valueAsBool(value)
		case "timeout":
			cfg.Timeout, ferr = valueAsDuration(value)
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		if ferr != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, ferr))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

// valueAsDuration accepts Go duration strings ("45s") or a number of seconds.
func valueAsDuration(v any) (time.Duration, error) {
	switch val := v.(type) {
	case int:
		return time.Duration(val) * time.Second, nil
	case float64:
		return time.Duration(val * float64(time.Second)), nil
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.Atoi(s); err == nil {
			return time.Duration(n) * time.Second, nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", val)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("expected duration, got %T", v)
	}
}
