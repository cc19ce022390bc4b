package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/respext/packages/logging"
	"github.com/abdul-hamid-achik/respext/packages/selector"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.True(t, c.IsDefault())
	assert.True(t, c.GetFollowRedirects())
	assert.True(t, c.GetValidateSSL())
	assert.False(t, c.GetNoColor())
	assert.Equal(t, 30*time.Second, c.TimeoutDuration())
	assert.NoError(t, c.Validate())

	mode, err := c.BehaviorMode()
	require.NoError(t, err)
	assert.Equal(t, selector.Smart, mode)
}

func TestGetBool_NilDefaults(t *testing.T) {
	c := &Config{}
	assert.True(t, c.GetFollowRedirects())
	assert.True(t, c.GetValidateSSL())
	assert.False(t, c.GetNoColor())

	c.ValidateSSL = BoolPtr(false)
	assert.False(t, c.GetValidateSSL())
}

func TestFindAndLoadConfig(t *testing.T) {
	dir := t.TempDir()

	c, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.True(t, c.IsDefault())

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".respextrc"),
		[]byte(`{"database":"memory","behavior":"never","validateSSL":false,"headers":{"X-Env":"dev"}}`), 0o644))

	c, err = FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "memory", c.Database)
	assert.Equal(t, "never", c.Behavior)
	assert.False(t, c.GetValidateSSL())
	assert.Equal(t, "dev", c.Headers["X-Env"])
	// unset keys keep their defaults
	assert.Equal(t, ".respext/responses", c.BodyDir)
	assert.Equal(t, 30000, c.Timeout)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "respext.config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"timeout":`), 0o644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, path)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"A": "1", "B": "2"}

	merged := base.Merge(&Config{
		Behavior:    "always",
		SendRate:    5,
		NoColor:     BoolPtr(true),
		Headers:     map[string]string{"B": "3"},
		ValidateSSL: nil,
	})

	assert.Equal(t, "always", merged.Behavior)
	assert.Equal(t, 5.0, merged.SendRate)
	assert.True(t, merged.GetNoColor())
	assert.True(t, merged.GetValidateSSL())
	assert.Equal(t, map[string]string{"A": "1", "B": "3"}, merged.Headers)
	// the receiver is unchanged
	assert.Equal(t, "2", base.Headers["B"])
	assert.Equal(t, "smart", base.Behavior)

	assert.Same(t, base, base.Merge(nil))
}

func TestFromEnv(t *testing.T) {
	env := map[string]string{
		"RESPEXT_DATABASE":   "sqlite:./x.db",
		"RESPEXT_TIMEOUT":    "5000",
		"RESPEXT_SEND_RATE":  "2.5",
		"RESPEXT_LOG_LEVEL":  "debug",
		"RESPEXT_BEHAVIOR":   " ",
		"NO_COLOR":           "1",
		"RESPEXT_LOG_FORMAT": "json",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	c, err := FromEnv(lookup)
	require.NoError(t, err)
	assert.Equal(t, "sqlite:./x.db", c.Database)
	assert.Equal(t, 5000, c.Timeout)
	assert.Equal(t, 2.5, c.SendRate)
	assert.Empty(t, c.Behavior)
	assert.True(t, c.GetNoColor())

	logCfg := DefaultConfig().Merge(c).LoggingConfig()
	assert.Equal(t, logging.LevelDebug, logCfg.Level)
	assert.Equal(t, logging.FormatJSON, logCfg.Format)

	env["RESPEXT_TIMEOUT"] = "soon"
	_, err = FromEnv(lookup)
	assert.ErrorContains(t, err, "RESPEXT_TIMEOUT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"bad behavior", func(c *Config) { c.Behavior = "sometimes" }},
		{"negative timeout", func(c *Config) { c.Timeout = -1 }},
		{"negative rate", func(c *Config) { c.SendRate = -1 }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".respext.config.json")
	c := DefaultConfig()
	c.Proxy = "http://proxy:8080"
	require.NoError(t, c.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}
