package config

import "github.com/abdul-hamid-achik/respext/packages/selector"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Database:        "sqlite://.respext/respext.db",
		BodyDir:         ".respext/responses",
		Behavior:        string(selector.Smart),
		Timeout:         30000, // 30 seconds
		SendRate:        0,
		FollowRedirects: BoolPtr(true),
		MaxRedirects:    10,
		ValidateSSL:     BoolPtr(true),
		Proxy:           "",
		Headers:         nil,
		LogLevel:        "warn",
		LogFormat:       "text",
		NoColor:         BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.Database == defaults.Database &&
		c.BodyDir == defaults.BodyDir &&
		c.Behavior == defaults.Behavior &&
		c.Timeout == defaults.Timeout &&
		c.SendRate == defaults.SendRate &&
		c.GetFollowRedirects() == defaults.GetFollowRedirects() &&
		c.MaxRedirects == defaults.MaxRedirects &&
		c.GetValidateSSL() == defaults.GetValidateSSL() &&
		c.Proxy == defaults.Proxy &&
		len(c.Headers) == 0 &&
		c.LogLevel == defaults.LogLevel &&
		c.LogFormat == defaults.LogFormat &&
		c.GetNoColor() == defaults.GetNoColor()
}
