package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/respext/packages/extract"
	"github.com/abdul-hamid-achik/respext/packages/model"
)

var (
	_ extract.Host = (*Host)(nil)

	// ErrSendUnavailable is returned by SendRequest when the Host has no Sender.
	ErrSendUnavailable = errors.New("sending is not configured")
)

// Host serves the extraction functions from a Store, sending through an
// optional Sender.
type Host struct {
	store  Store
	sender *Sender
}

// NewHost creates a Host. A nil sender makes SendRequest fail.
func NewHost(store Store, sender *Sender) *Host {
	return &Host{store: store, sender: sender}
}

func (h *Host) GetRequest(ctx context.Context, id string) (*model.Request, error) {
	return h.store.GetRequest(ctx, id)
}

func (h *Host) FindResponses(ctx context.Context, requestID string) ([]*model.Response, error) {
	return h.store.FindResponses(ctx, requestID)
}

func (h *Host) SendRequest(ctx context.Context, id string) error {
	if h.sender == nil {
		return ErrSendUnavailable
	}
	_, err := h.sender.Send(ctx, id)
	return err
}

// ReadBody reads a whole response body file.
func (h *Host) ReadBody(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// ClearResponses deletes the stored responses of a request and their body
// files.
func (h *Host) ClearResponses(ctx context.Context, requestID string) (int, error) {
	responses, err := h.store.FindResponses(ctx, requestID)
	if err != nil {
		return 0, err
	}
	for _, resp := range responses {
		if resp.BodyPath == "" {
			continue
		}
		if err := os.Remove(resp.BodyPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("failed to remove body of %s: %w", resp.ID, err)
		}
	}
	return h.store.DeleteResponses(ctx, requestID)
}
