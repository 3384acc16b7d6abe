package client

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/evdash/evdash-backend-go/pkg/models"
)

// BackupState is the lifecycle phase of the backup manager.
type BackupState int

const (
	BackupIdle BackupState = iota
	BackupExporting
	BackupPreviewing
	BackupAwaitingConfirmation
	BackupRestoring
)

func (s BackupState) String() string {
	switch s {
	case BackupIdle:
		return "idle"
	case BackupExporting:
		return "exporting"
	case BackupPreviewing:
		return "previewing"
	case BackupAwaitingConfirmation:
		return "awaiting_confirmation"
	case BackupRestoring:
		return "restoring"
	default:
		return "unknown"
	}
}

// pendingRestore is a previewed snapshot held at the confirmation gate.
type pendingRestore struct {
	filename string
	path     string
	manifest *models.BackupManifest
}

// BackupManager drives snapshot export and the two-step restore flow.
// A restore must be previewed first; the store is only touched after an
// explicit ConfirmRestore. Export and restore never overlap.
type BackupManager struct {
	client    *Client
	refresher *Refresher

	mu      sync.Mutex
	state   BackupState
	pending *pendingRestore

	// SystemStatus as observed after the last successful restore.
	lastStatus *models.SystemStatus
}

// NewBackupManager creates a manager in the idle state. refresher may
// be nil when no views need refreshing after a restore.
func NewBackupManager(client *Client, refresher *Refresher) *BackupManager {
	return &BackupManager{client: client, refresher: refresher}
}

// State reports the current lifecycle phase.
func (bm *BackupManager) State() BackupState {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.state
}

// Pending returns the manifest held at the confirmation gate, or nil.
func (bm *BackupManager) Pending() *models.BackupManifest {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.pending == nil {
		return nil
	}
	return bm.pending.manifest
}

// LastSystemStatus returns the system status re-read after the most
// recent successful restore, or nil if none has completed.
func (bm *BackupManager) LastSystemStatus() *models.SystemStatus {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.lastStatus
}

// Export streams a snapshot archive into w and returns the filename
// the server chose. Only allowed from the idle state.
func (bm *BackupManager) Export(ctx context.Context, w io.Writer) (string, error) {
	if err := bm.transition(BackupIdle, BackupExporting); err != nil {
		return "", err
	}
	defer bm.setState(BackupIdle)

	return bm.client.BackupExport(ctx, w)
}

// Preview uploads a candidate snapshot for inspection and, if the
// server accepts it, holds it at the confirmation gate. The file at
// path is re-read on confirmation, so it must stay in place until the
// flow ends.
func (bm *BackupManager) Preview(ctx context.Context, path string) (*models.BackupManifest, error) {
	if !strings.EqualFold(filepath.Ext(path), ".backup") {
		return nil, validationErrorf("unsupported file type %q: expected a .backup archive", filepath.Ext(path))
	}
	if err := bm.transition(BackupIdle, BackupPreviewing); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		bm.setState(BackupIdle)
		return nil, err
	}
	defer f.Close()

	manifest, err := bm.client.BackupInfo(ctx, filepath.Base(path), f)
	if err != nil {
		bm.setState(BackupIdle)
		return nil, err
	}

	bm.mu.Lock()
	bm.pending = &pendingRestore{
		filename: filepath.Base(path),
		path:     path,
		manifest: manifest,
	}
	bm.state = BackupAwaitingConfirmation
	bm.mu.Unlock()
	return manifest, nil
}

// ConfirmRestore applies the pending snapshot. Only valid while a
// previewed candidate is awaiting confirmation. On success the pending
// candidate is cleared, the views refresh and the system status is
// re-read. On failure the candidate is discarded as well and the
// manager returns to idle.
func (bm *BackupManager) ConfirmRestore(ctx context.Context) (*RestoreResult, error) {
	bm.mu.Lock()
	if bm.state != BackupAwaitingConfirmation || bm.pending == nil {
		state := bm.state
		bm.mu.Unlock()
		if state == BackupIdle {
			return nil, validationErrorf("no restore pending confirmation")
		}
		return nil, ErrBackupBusy
	}
	pending := bm.pending
	bm.state = BackupRestoring
	bm.mu.Unlock()

	result, err := bm.restore(ctx, pending)
	if err != nil {
		// The server rejected or failed the restore and the store is
		// unchanged. The candidate is discarded; a new preview is
		// required before another attempt.
		bm.mu.Lock()
		bm.pending = nil
		bm.state = BackupIdle
		bm.mu.Unlock()
		return nil, err
	}

	bm.mu.Lock()
	bm.pending = nil
	bm.state = BackupIdle
	bm.mu.Unlock()

	if bm.refresher != nil {
		_ = bm.refresher.RefreshAll(ctx)
	}
	if status, err := bm.client.SystemStatus(ctx); err == nil {
		bm.mu.Lock()
		bm.lastStatus = status
		bm.mu.Unlock()
	}
	return result, nil
}

// Cancel drops the pending candidate and returns to idle. The trip
// store is untouched. Cancelling without a pending restore is a no-op.
func (bm *BackupManager) Cancel() {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.state == BackupAwaitingConfirmation {
		bm.pending = nil
		bm.state = BackupIdle
	}
}

func (bm *BackupManager) restore(ctx context.Context, pending *pendingRestore) (*RestoreResult, error) {
	f, err := os.Open(pending.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return bm.client.BackupImport(ctx, pending.filename, f)
}

func (bm *BackupManager) transition(from, to BackupState) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.state != from {
		return ErrBackupBusy
	}
	bm.state = to
	return nil
}

func (bm *BackupManager) setState(s BackupState) {
	bm.mu.Lock()
	bm.state = s
	bm.mu.Unlock()
}
