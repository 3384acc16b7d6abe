package service

import (
	"archive/zip"
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evdash/evdash-backend-go/internal/database"
	"github.com/evdash/evdash-backend-go/internal/repository"
	"github.com/evdash/evdash-backend-go/pkg/models"
)

func newBackupFixture(t *testing.T) (*BackupService, *repository.TripRepository, *repository.FileRepository) {
	t.Helper()
	db, trips, files := openTestStore(t)
	return NewBackupService(db, trips, files), trips, files
}

func exportToFile(t *testing.T, svc *BackupService) (string, *models.BackupManifest) {
	t.Helper()

	var buf bytes.Buffer
	manifest, err := svc.Export(&buf)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snapshot.backup")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path, manifest
}

func TestExportManifestCountsStore(t *testing.T) {
	svc, trips, files := newBackupFixture(t)
	seedTrips(t, trips,
		makeTrip(t, "2024-01-10T08:00:00", 60, 9),
		makeTrip(t, "2024-02-10T08:00:00", 40, 6),
	)
	require.NoError(t, files.Record("jan.db", "hash-jan", 2))

	_, manifest := exportToFile(t, svc)

	assert.Equal(t, "full", manifest.BackupType)
	assert.Equal(t, int64(2), manifest.TotalTrips)
	assert.Equal(t, int64(1), manifest.TotalFiles)
	assert.Equal(t, "2024-01-10T08:00:00", manifest.FirstTrip)
	assert.NotEmpty(t, manifest.SnapshotID)
}

func TestInspectReadsManifestWithoutApplying(t *testing.T) {
	svc, trips, _ := newBackupFixture(t)
	seedTrips(t, trips, makeTrip(t, "2024-01-10T08:00:00", 60, 9))

	path, exported := exportToFile(t, svc)

	inspected, err := svc.Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, exported.SnapshotID, inspected.SnapshotID)
	assert.Equal(t, int64(1), inspected.TotalTrips)

	count, err := trips.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "inspect must not touch the store")
}

func TestInspectRejectsNonArchive(t *testing.T) {
	svc, _, _ := newBackupFixture(t)

	path := filepath.Join(t.TempDir(), "junk.backup")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := svc.Inspect(path)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRestoreRoundtrip(t *testing.T) {
	source, sourceTrips, sourceFiles := newBackupFixture(t)
	seedTrips(t, sourceTrips,
		makeTrip(t, "2024-01-10T08:00:00", 60, 9),
		makeTrip(t, "2024-02-10T08:00:00", 40, 6),
		makeTrip(t, "2024-03-10T08:00:00", 25, 4),
	)
	require.NoError(t, sourceFiles.Record("jan.db", "hash-jan", 3))

	path, _ := exportToFile(t, source)

	target, targetTrips, targetFiles := newBackupFixture(t)
	seedTrips(t, targetTrips, makeTrip(t, "2020-06-01T08:00:00", 10, 2))

	manifest, err := target.Restore(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), manifest.TotalTrips)

	count, err := targetTrips.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count, "restore replaces, never merges")

	first, _, err := targetTrips.DateRange()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10T08:00:00", first)

	total, _, err := targetFiles.Counts()
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestRestoreRejectsManifestCountMismatch(t *testing.T) {
	path := writeTamperedBackup(t, 1, 5)

	target, targetTrips, _ := newBackupFixture(t)
	seedTrips(t, targetTrips,
		makeTrip(t, "2020-06-01T08:00:00", 10, 2),
		makeTrip(t, "2020-06-02T08:00:00", 12, 2),
	)

	_, err := target.Restore(path)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	count, err := targetTrips.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "a rejected restore must leave the store untouched")
}

func TestRestoreRejectsArchiveWithoutSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noDB.backup")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	entry, err := zw.Create("manifest.json")
	require.NoError(t, err)
	require.NoError(t, json.NewEncoder(entry).Encode(models.BackupManifest{Version: "1.0", TotalTrips: 0}))
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	target, _, _ := newBackupFixture(t)
	_, err = target.Restore(path)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

// writeTamperedBackup builds an archive whose snapshot holds tripCount
// trips while its manifest claims declaredCount.
func writeTamperedBackup(t *testing.T, tripCount int, declaredCount int64) string {
	t.Helper()

	dir := t.TempDir()
	snapPath := filepath.Join(dir, "snapshot.db")
	snap, err := sql.Open("sqlite", snapPath)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(snap))

	repo := repository.NewTripRepository(snap)
	for i := 0; i < tripCount; i++ {
		_, _, err := repo.InsertSourceTrips([]models.SourceTrip{
			makeTrip(t, "2024-01-10T08:00:00", 10+float64(i), 2),
		})
		require.NoError(t, err)
	}
	require.NoError(t, snap.Close())

	path := filepath.Join(dir, "tampered.backup")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)

	dbEntry, err := zw.Create("historical.db")
	require.NoError(t, err)
	raw, err := os.ReadFile(snapPath)
	require.NoError(t, err)
	_, err = dbEntry.Write(raw)
	require.NoError(t, err)

	manifestEntry, err := zw.Create("manifest.json")
	require.NoError(t, err)
	require.NoError(t, json.NewEncoder(manifestEntry).Encode(models.BackupManifest{
		Version:    "1.0",
		TotalTrips: declaredCount,
		BackupType: "full",
	}))

	filesEntry, err := zw.Create("files_list.json")
	require.NoError(t, err)
	require.NoError(t, json.NewEncoder(filesEntry).Encode([]models.BackupFileRecord{}))

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}
