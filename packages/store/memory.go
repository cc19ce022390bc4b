package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/respext/packages/model"
)

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu        sync.RWMutex
	requests  map[string]*model.Request
	responses map[string][]*model.Response // by request ID, in save order
	now       func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests:  make(map[string]*model.Request),
		responses: make(map[string][]*model.Response),
		now:       time.Now,
	}
}

func (m *MemoryStore) GetRequest(ctx context.Context, id string) (*model.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	req, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	return cloneRequest(req), nil
}

func (m *MemoryStore) ListRequests(ctx context.Context) ([]*model.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*model.Request, 0, len(m.requests))
	for _, req := range m.requests {
		list = append(list, cloneRequest(req))
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (m *MemoryStore) SaveRequest(ctx context.Context, req *model.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stampRequest(req, m.now())
	m.requests[req.ID] = cloneRequest(req)
	return nil
}

func (m *MemoryStore) FindResponses(ctx context.Context, requestID string) ([]*model.Response, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := append([]*model.Response(nil), m.responses[requestID]...)
	sort.SliceStable(stored, func(i, j int) bool {
		return stored[i].CreatedAt.Before(stored[j].CreatedAt)
	})

	// newest first; equal timestamps put the later save first
	list := make([]*model.Response, len(stored))
	for i, resp := range stored {
		list[len(stored)-1-i] = cloneResponse(resp)
	}
	return list, nil
}

func (m *MemoryStore) SaveResponse(ctx context.Context, resp *model.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stampResponse(resp, m.now())
	stored := m.responses[resp.RequestID]
	for i, existing := range stored {
		if existing.ID == resp.ID {
			stored[i] = cloneResponse(resp)
			return nil
		}
	}
	m.responses[resp.RequestID] = append(stored, cloneResponse(resp))
	return nil
}

func (m *MemoryStore) DeleteResponses(ctx context.Context, requestID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.responses[requestID])
	delete(m.responses, requestID)
	return n, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
