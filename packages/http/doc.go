// Package http sends stored requests on behalf of the response store.
//
// Headers keep their order and repeated values in both directions, digest
// credentials are answered after the server's challenge, and bodies are read
// whole so they can be written to the body directory.
package http
