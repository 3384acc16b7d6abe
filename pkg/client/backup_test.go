package client

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evdash/evdash-backend-go/pkg/models"
)

func writeCandidate(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("archive-bytes"), 0o644))
	return path
}

func testManifest() models.BackupManifest {
	return models.BackupManifest{
		Version:    "1.0",
		SnapshotID: "snap-1",
		TotalTrips: 42,
		BackupType: "full",
	}
}

func serveBackupEndpoints(t *testing.T, cm *countingMux) {
	t.Helper()
	cm.handle("/api/backup/info", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"status": "success", "backup_info": testManifest()})
	})
	cm.handle("/api/backup/import", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, RestoreResult{Status: "success", Message: "backup restored", BackupInfo: testManifest()})
	})
	cm.handle("/api/system/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, models.SystemStatus{Database: models.DatabaseStatus{TotalTrips: 42}})
	})
}

func TestPreviewRejectsWrongExtensionLocally(t *testing.T) {
	cm := newCountingMux()
	bm := NewBackupManager(newTestClient(t, cm), nil)

	_, err := bm.Preview(context.Background(), writeCandidate(t, "snapshot.zip"))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, cm.total())
	assert.Equal(t, BackupIdle, bm.State())
}

func TestPreviewHoldsCandidateAtGate(t *testing.T) {
	cm := newCountingMux()
	serveBackupEndpoints(t, cm)
	bm := NewBackupManager(newTestClient(t, cm), nil)

	manifest, err := bm.Preview(context.Background(), writeCandidate(t, "snapshot.backup"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), manifest.TotalTrips)

	assert.Equal(t, BackupAwaitingConfirmation, bm.State())
	require.NotNil(t, bm.Pending())
	assert.Equal(t, "snap-1", bm.Pending().SnapshotID)
	assert.Equal(t, 0, cm.count("/api/backup/import"), "preview must not apply anything")
}

func TestCancelClearsPendingWithoutTouchingStore(t *testing.T) {
	cm := newCountingMux()
	serveBackupEndpoints(t, cm)
	bm := NewBackupManager(newTestClient(t, cm), nil)

	_, err := bm.Preview(context.Background(), writeCandidate(t, "snapshot.backup"))
	require.NoError(t, err)

	bm.Cancel()

	assert.Equal(t, BackupIdle, bm.State())
	assert.Nil(t, bm.Pending())
	assert.Equal(t, 0, cm.count("/api/backup/import"))

	// Confirming after a cancel has nothing to apply.
	_, err = bm.ConfirmRestore(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestConfirmRestoreAppliesAndRefreshes(t *testing.T) {
	cm := newCountingMux()
	serveBackupEndpoints(t, cm)
	serveRefreshEndpoints(t, cm)

	c := newTestClient(t, cm)
	sink := &recordingSink{}
	bm := NewBackupManager(c, NewRefresher(c, sink, 0))

	_, err := bm.Preview(context.Background(), writeCandidate(t, "snapshot.backup"))
	require.NoError(t, err)

	result, err := bm.ConfirmRestore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)

	assert.Equal(t, BackupIdle, bm.State())
	assert.Nil(t, bm.Pending())
	assert.Equal(t, 1, cm.count("/api/backup/import"))
	assert.Equal(t, 1, cm.count("/api/consumption"))
	assert.Equal(t, 1, cm.count("/api/system/status"))

	require.NotNil(t, bm.LastSystemStatus())
	assert.Equal(t, int64(42), bm.LastSystemStatus().Database.TotalTrips)
}

func TestConfirmRestoreWithoutPreview(t *testing.T) {
	cm := newCountingMux()
	bm := NewBackupManager(newTestClient(t, cm), nil)

	_, err := bm.ConfirmRestore(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, cm.total())
}

func TestOverlappingBackupOperationsAreRejected(t *testing.T) {
	cm := newCountingMux()
	serveBackupEndpoints(t, cm)
	bm := NewBackupManager(newTestClient(t, cm), nil)

	_, err := bm.Preview(context.Background(), writeCandidate(t, "snapshot.backup"))
	require.NoError(t, err)

	// Neither an export nor a second preview may run at the gate.
	var buf bytes.Buffer
	_, err = bm.Export(context.Background(), &buf)
	assert.ErrorIs(t, err, ErrBackupBusy)

	_, err = bm.Preview(context.Background(), writeCandidate(t, "other.backup"))
	assert.ErrorIs(t, err, ErrBackupBusy)
}

func TestFailedRestoreReturnsToIdle(t *testing.T) {
	cm := newCountingMux()
	cm.handle("/api/backup/info", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"status": "success", "backup_info": testManifest()})
	})
	cm.handle("/api/backup/import", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(t, w, map[string]string{"error": "backup manifest declares 42 trips but the snapshot holds 1"})
	})

	bm := NewBackupManager(newTestClient(t, cm), nil)
	_, err := bm.Preview(context.Background(), writeCandidate(t, "snapshot.backup"))
	require.NoError(t, err)

	_, err = bm.ConfirmRestore(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)

	// A rejected restore discards the candidate; a new preview is
	// required before another attempt.
	assert.Equal(t, BackupIdle, bm.State())
	assert.Nil(t, bm.Pending())

	_, err = bm.ConfirmRestore(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestExportStreamsArchive(t *testing.T) {
	cm := newCountingMux()
	cm.handle("/api/backup/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="EV_Backup_20240110_080000.backup"`)
		_, _ = w.Write([]byte("zip-bytes"))
	})

	bm := NewBackupManager(newTestClient(t, cm), nil)
	var buf bytes.Buffer
	name, err := bm.Export(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, "EV_Backup_20240110_080000.backup", name)
	assert.Equal(t, "zip-bytes", buf.String())
	assert.Equal(t, BackupIdle, bm.State())
}
