// Package extract implements the response extension template functions.
//
// Three extractors build a fixed-shape record and filter it with a path:
//   - oauth2: token state of a request using OAuth2 authentication
//   - response: metadata of the selected response (status, headers, timing)
//   - body: the selected response body parsed as JSON
//
// A dispatcher routes to one of them by attribute name. Every extractor
// returns a Result; a missing value and every failure produce no output,
// with the reason kept in Result.Err and logged where it was detected.
package extract
