package client

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/evdash/evdash-backend-go/pkg/models"
)

// IngestCoordinator serializes source-file uploads. At most one upload
// runs at a time; a second call is rejected, not queued.
type IngestCoordinator struct {
	client    *Client
	refresher *Refresher

	mu   sync.Mutex
	busy bool
}

// NewIngestCoordinator creates a coordinator. refresher may be nil when
// no views need refreshing after an ingest.
func NewIngestCoordinator(client *Client, refresher *Refresher) *IngestCoordinator {
	return &IngestCoordinator{client: client, refresher: refresher}
}

// Ingest uploads one source file. The filename must carry a .db
// extension; anything else is rejected before any network traffic.
// After a server-confirmed success the attached refresher runs once;
// a refresh failure leaves views stale but never fails the upload.
func (ic *IngestCoordinator) Ingest(ctx context.Context, filename string, r io.Reader) (*models.UploadResult, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".db") {
		return nil, validationErrorf("unsupported file type %q: expected a .db source file", filepath.Ext(filename))
	}

	ic.mu.Lock()
	if ic.busy {
		ic.mu.Unlock()
		return nil, ErrIngestBusy
	}
	ic.busy = true
	ic.mu.Unlock()

	defer func() {
		ic.mu.Lock()
		ic.busy = false
		ic.mu.Unlock()
	}()

	result, err := ic.client.Upload(ctx, filename, r)
	if err != nil {
		return nil, err
	}
	if result.Status == models.UploadStatusSuccess && ic.refresher != nil {
		if err := ic.refresher.RefreshAll(ctx); err != nil {
			// The upload itself succeeded; a stale view must not read
			// as a failed ingest.
			log.Printf("refresh after ingest of %s: %v", filename, err)
		}
	}
	return result, nil
}
