// Package store persists request definitions and their responses, and
// provides the Host the extraction functions read from.
//
// Two Store implementations are available:
//   - MemoryStore keeps everything in process memory
//   - SQLiteStore persists to a SQLite database file
//
// Response bodies are not stored in the database. The Sender writes each body
// to its own file under a body directory and records the path.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abdul-hamid-achik/respext/packages/model"
)

// Store holds requests and responses. Implementations are safe for
// concurrent use.
type Store interface {
	// GetRequest returns nil, nil when no request has the id.
	GetRequest(ctx context.Context, id string) (*model.Request, error)
	ListRequests(ctx context.Context) ([]*model.Request, error)
	// SaveRequest inserts or replaces req. An empty ID is assigned.
	SaveRequest(ctx context.Context, req *model.Request) error
	// FindResponses returns the responses of a request, newest first.
	FindResponses(ctx context.Context, requestID string) ([]*model.Response, error)
	// SaveResponse inserts or replaces resp. An empty ID is assigned.
	SaveResponse(ctx context.Context, resp *model.Response) error
	// DeleteResponses removes every response of a request and returns how
	// many were removed.
	DeleteResponses(ctx context.Context, requestID string) (int, error)
	Close() error
}

// Open returns the Store for a connection string. "memory" selects a
// MemoryStore; anything else is handed to NewSQLiteStore.
func Open(connectionString string) (Store, error) {
	if strings.TrimSpace(connectionString) == "memory" {
		return NewMemoryStore(), nil
	}
	s, err := NewSQLiteStore(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return s, nil
}

func stampRequest(req *model.Request, now time.Time) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now
}

func stampResponse(resp *model.Response, now time.Time) {
	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = now
	}
	resp.UpdatedAt = now
}

func cloneRequest(req *model.Request) *model.Request {
	c := *req
	c.Headers = append([]model.Header(nil), req.Headers...)
	if req.Authentication != nil {
		auth := *req.Authentication
		auth.Scopes = append([]string(nil), req.Authentication.Scopes...)
		c.Authentication = &auth
	}
	return &c
}

func cloneResponse(resp *model.Response) *model.Response {
	c := *resp
	c.Headers = append([]model.Header(nil), resp.Headers...)
	return &c
}
