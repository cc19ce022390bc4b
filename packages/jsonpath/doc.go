// Package jsonpath evaluates the small path filters used by the response
// extension functions.
//
// Supported syntax:
//   - $ or an empty path: the root value
//   - $.field, $.nested.field: object member access
//   - $.items[0]: a single array index after a member name
//
// Values are held in Value, a tagged variant over JSON kinds. Any access that
// does not resolve (missing member, index out of range, wrong kind) yields
// Null and evaluation stops. Wildcards, slices, filters and recursive descent
// are not supported.
package jsonpath
