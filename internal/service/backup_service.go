package service

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/evdash/evdash-backend-go/internal/observability/metrics"
	"github.com/evdash/evdash-backend-go/internal/repository"
	"github.com/evdash/evdash-backend-go/pkg/models"
)

// Backup archive layout.
const (
	backupVersion      = "1.0"
	backupDBEntry      = "historical.db"
	backupManifestName = "manifest.json"
	backupFilesName    = "files_list.json"
)

// AppVersion is stamped into snapshot manifests and the system status.
const AppVersion = "1.0"

// BackupService creates, inspects and applies full-state snapshots.
// A snapshot is a zip holding a consistent copy of the store plus a
// manifest; applying one replaces the entire trip set atomically.
type BackupService struct {
	db    *sql.DB
	trips *repository.TripRepository
	files *repository.FileRepository
}

// NewBackupService creates a new backup service
func NewBackupService(db *sql.DB, trips *repository.TripRepository, files *repository.FileRepository) *BackupService {
	return &BackupService{db: db, trips: trips, files: files}
}

// Export writes a snapshot archive to w and returns its manifest.
// The store is never mutated.
func (s *BackupService) Export(w io.Writer) (*models.BackupManifest, error) {
	manifest, err := s.buildManifest()
	if err != nil {
		return nil, err
	}

	fileRecords, err := s.files.List()
	if err != nil {
		return nil, err
	}

	// VACUUM INTO produces a consistent single-file copy of the live
	// store without blocking readers.
	snapshotPath := filepath.Join(os.TempDir(), "evdash_snapshot_"+uuid.NewString()+".db")
	defer os.Remove(snapshotPath)
	if _, err := s.db.Exec("VACUUM INTO ?", snapshotPath); err != nil {
		return nil, fmt.Errorf("failed to snapshot database: %w", err)
	}

	zw := zip.NewWriter(w)

	dbEntry, err := zw.Create(backupDBEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive entry: %w", err)
	}
	snapshot, err := os.Open(snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	_, err = io.Copy(dbEntry, snapshot)
	snapshot.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to write snapshot to archive: %w", err)
	}

	if err := writeJSONEntry(zw, backupManifestName, manifest); err != nil {
		return nil, err
	}
	if err := writeJSONEntry(zw, backupFilesName, fileRecords); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	metrics.ObserveExport()
	log.Printf("Exported snapshot %s: %d trips, %d files",
		manifest.SnapshotID, manifest.TotalTrips, manifest.TotalFiles)

	return manifest, nil
}

// Inspect reads a snapshot's manifest without applying anything.
func (s *BackupService) Inspect(path string) (*models.BackupManifest, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, validationErrorf("not a valid backup archive")
	}
	defer zr.Close()

	var manifest *models.BackupManifest
	hasDB := false
	for _, f := range zr.File {
		switch f.Name {
		case backupManifestName:
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open manifest: %w", err)
			}
			manifest = &models.BackupManifest{}
			err = json.NewDecoder(rc).Decode(manifest)
			rc.Close()
			if err != nil {
				return nil, validationErrorf("backup manifest is malformed")
			}
		case backupDBEntry:
			hasDB = true
		}
	}

	if manifest == nil {
		return nil, validationErrorf("backup archive is missing its manifest")
	}
	if !hasDB {
		return nil, validationErrorf("backup archive is missing its database snapshot")
	}
	if manifest.Version == "" {
		return nil, validationErrorf("backup manifest has no format version")
	}

	return manifest, nil
}

// Restore validates the snapshot at path and replaces the entire store
// with its contents. The swap happens inside a single transaction, so
// a failed restore leaves the current data untouched.
func (s *BackupService) Restore(path string) (*models.BackupManifest, error) {
	manifest, err := s.Inspect(path)
	if err != nil {
		metrics.ObserveRestore("rejected")
		return nil, err
	}

	snapshotPath, err := extractSnapshotDB(path)
	if err != nil {
		metrics.ObserveRestore("error")
		return nil, err
	}
	defer os.Remove(snapshotPath)

	trips, fileRecords, err := readSnapshot(snapshotPath)
	if err != nil {
		metrics.ObserveRestore("error")
		return nil, err
	}

	if int64(len(trips)) != manifest.TotalTrips {
		metrics.ObserveRestore("rejected")
		return nil, validationErrorf(
			"backup manifest declares %d trips but the snapshot holds %d",
			manifest.TotalTrips, len(trips),
		)
	}

	if err := s.trips.ReplaceAll(trips, fileRecords); err != nil {
		metrics.ObserveRestore("error")
		return nil, err
	}

	metrics.ObserveRestore("success")
	log.Printf("Restored snapshot %s: %d trips, %d files",
		manifest.SnapshotID, manifest.TotalTrips, manifest.TotalFiles)

	return manifest, nil
}

func (s *BackupService) buildManifest() (*models.BackupManifest, error) {
	totalTrips, err := s.trips.Count()
	if err != nil {
		return nil, err
	}
	totalFiles, _, err := s.files.Counts()
	if err != nil {
		return nil, err
	}
	firstTrip, lastTrip, err := s.trips.DateRange()
	if err != nil {
		return nil, err
	}

	return &models.BackupManifest{
		Version:    backupVersion,
		SnapshotID: uuid.NewString(),
		CreatedAt:  time.Now().Format(time.RFC3339),
		AppVersion: AppVersion,
		TotalTrips: totalTrips,
		TotalFiles: totalFiles,
		FirstTrip:  firstTrip,
		LastTrip:   lastTrip,
		BackupType: "full",
	}, nil
}

func writeJSONEntry(zw *zip.Writer, name string, v interface{}) error {
	entry, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s: %w", name, err)
	}
	enc := json.NewEncoder(entry)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return nil
}

func extractSnapshotDB(archivePath string) (string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", validationErrorf("not a valid backup archive")
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != backupDBEntry {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open snapshot entry: %w", err)
		}
		defer rc.Close()

		dst := filepath.Join(os.TempDir(), "evdash_restore_"+uuid.NewString()+".db")
		out, err := os.Create(dst)
		if err != nil {
			return "", fmt.Errorf("failed to create temp snapshot: %w", err)
		}
		if _, err := io.Copy(out, rc); err != nil {
			out.Close()
			os.Remove(dst)
			return "", fmt.Errorf("failed to extract snapshot: %w", err)
		}
		if err := out.Close(); err != nil {
			os.Remove(dst)
			return "", fmt.Errorf("failed to extract snapshot: %w", err)
		}
		return dst, nil
	}

	return "", validationErrorf("backup archive is missing its database snapshot")
}

// readSnapshot loads all trips and file records out of an extracted
// snapshot database.
func readSnapshot(path string) ([]models.SourceTrip, []models.BackupFileRecord, error) {
	snap, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	defer snap.Close()

	trips, err := repository.NewTripRepository(snap).AllSourceTrips()
	if err != nil {
		return nil, nil, validationErrorf("backup snapshot is not readable: %v", err)
	}
	fileRecords, err := repository.NewFileRepository(snap).List()
	if err != nil {
		return nil, nil, validationErrorf("backup snapshot is not readable: %v", err)
	}

	return trips, fileRecords, nil
}
