// Package output provides formatters for displaying requests, responses,
// extraction results and statistics.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output, one document per call
package output
