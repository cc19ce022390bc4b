// Package config handles configuration loading and management for respext.
//
// It provides functionality for:
//   - Loading configuration from .respext.config.json or .respextrc files
//   - Default configuration values
//   - RESPEXT_* environment overrides
package config
