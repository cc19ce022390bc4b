package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/respext/packages/logging"
	"github.com/abdul-hamid-achik/respext/packages/selector"
)

// Config represents the respext configuration
type Config struct {
	Database        string            `json:"database,omitempty"` // connection string, or "memory"
	BodyDir         string            `json:"bodyDir,omitempty"`  // directory for response body files
	Behavior        string            `json:"behavior,omitempty"` // default trigger behavior: smart, always, never
	Timeout         int               `json:"timeout,omitempty"`  // milliseconds
	SendRate        float64           `json:"sendRate,omitempty"` // requests per second, 0 for unlimited
	FollowRedirects *bool             `json:"followRedirects,omitempty"`
	MaxRedirects    int               `json:"maxRedirects,omitempty"`
	ValidateSSL     *bool             `json:"validateSSL,omitempty"`
	Proxy           string            `json:"proxy,omitempty"`
	Headers         map[string]string `json:"headers,omitempty"` // Default headers for all requests
	LogLevel        string            `json:"logLevel,omitempty"`
	LogFormat       string            `json:"logFormat,omitempty"`
	NoColor         *bool             `json:"noColor,omitempty"`
}

// BoolPtr returns a pointer to a bool value
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration returns Timeout as a duration.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// BehaviorMode returns the parsed default trigger behavior.
func (c *Config) BehaviorMode() (selector.BehaviorMode, error) {
	return selector.ParseBehaviorMode(c.Behavior)
}

// LoggingConfig returns the logger settings, writing to stderr.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:  logging.ParseLevel(c.LogLevel),
		Format: logging.ParseFormat(c.LogFormat),
		Output: os.Stderr,
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := c.BehaviorMode(); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.SendRate < 0 {
		return fmt.Errorf("sendRate must not be negative")
	}
	if c.MaxRedirects < 0 {
		return fmt.Errorf("maxRedirects must not be negative")
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unsupported logFormat %q (use text or json)", c.LogFormat)
	}
	return nil
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".respext.config.json",
	"respext.config.json",
	".respextrc",
	".respextrc.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	// Search for config file in current directory
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.Database != "" {
		result.Database = other.Database
	}
	if other.BodyDir != "" {
		result.BodyDir = other.BodyDir
	}
	if other.Behavior != "" {
		result.Behavior = other.Behavior
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.SendRate > 0 {
		result.SendRate = other.SendRate
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		result.LogFormat = other.LogFormat
	}

	// Boolean flags - only override if explicitly set in other config
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	// Merge headers
	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(c.Headers)+len(other.Headers))
		for k, v := range c.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	return &result
}

// EnvPrefix prefixes the environment variables read by FromEnv.
const EnvPrefix = "RESPEXT_"

// FromEnv builds a Config holding only the settings present in the
// environment, ready to be merged over a file config. NO_COLOR is honored
// as well as RESPEXT_NO_COLOR.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	c := &Config{}
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("DATABASE"); ok {
		c.Database = v
	}
	if v, ok := get("BODY_DIR"); ok {
		c.BodyDir = v
	}
	if v, ok := get("BEHAVIOR"); ok {
		c.Behavior = v
	}
	if v, ok := get("PROXY"); ok {
		c.Proxy = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := get("LOG_FORMAT"); ok {
		c.LogFormat = v
	}
	if v, ok := get("TIMEOUT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %sTIMEOUT: %w", EnvPrefix, err)
		}
		c.Timeout = n
	}
	if v, ok := get("SEND_RATE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %sSEND_RATE: %w", EnvPrefix, err)
		}
		c.SendRate = f
	}
	if v, ok := get("VALIDATE_SSL"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %sVALIDATE_SSL: %w", EnvPrefix, err)
		}
		c.ValidateSSL = BoolPtr(b)
	}
	if v, ok := get("NO_COLOR"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %sNO_COLOR: %w", EnvPrefix, err)
		}
		c.NoColor = BoolPtr(b)
	} else if v, ok := lookup("NO_COLOR"); ok && v != "" {
		c.NoColor = BoolPtr(true)
	}

	return c, nil
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0644)
}
