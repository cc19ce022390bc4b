// Package cmd implements the respext CLI commands using Cobra.
//
// Available commands:
//   - render: Render a template or call one extraction function
//   - send: Send a stored request and store its response
//   - requests: List stored requests, import workspace files
//   - responses: List, summarize or clear stored responses
//   - functions: Describe the extraction functions
//   - validate: Check workspace files without importing them
//   - init: Create a config file and an example workspace
//   - version: Show respext version information
package cmd
