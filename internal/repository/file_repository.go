package repository

import (
	"database/sql"
	"fmt"

	"github.com/evdash/evdash-backend-go/pkg/models"
)

// FileRepository handles database operations for uploaded source files
type FileRepository struct {
	db *sql.DB
}

// NewFileRepository creates a new file repository
func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Exists reports whether a source file with the given content
// fingerprint was ingested before.
func (r *FileRepository) Exists(fileHash string) (bool, error) {
	var id int64
	err := r.db.QueryRow("SELECT id FROM uploaded_files WHERE file_hash = ?", fileHash).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up uploaded file: %w", err)
	}
	return true, nil
}

// Record registers a newly ingested source file.
func (r *FileRepository) Record(filename, fileHash string, tripsAdded int) error {
	_, err := r.db.Exec(
		"INSERT INTO uploaded_files (filename, file_hash, trips_added) VALUES (?, ?, ?)",
		filename, fileHash, tripsAdded,
	)
	if err != nil {
		return fmt.Errorf("failed to record uploaded file: %w", err)
	}
	return nil
}

// AddTrips bumps the trip counter of a re-uploaded file that still
// contributed new trips.
func (r *FileRepository) AddTrips(fileHash string, tripsAdded int) error {
	_, err := r.db.Exec(`
		UPDATE uploaded_files
		SET trips_added = trips_added + ?, upload_date = CURRENT_TIMESTAMP
		WHERE file_hash = ?
	`, tripsAdded, fileHash)
	if err != nil {
		return fmt.Errorf("failed to update uploaded file: %w", err)
	}
	return nil
}

// Counts returns the total and distinct-hash uploaded file counts.
func (r *FileRepository) Counts() (total, unique int64, err error) {
	err = r.db.QueryRow(
		"SELECT COUNT(*), COUNT(DISTINCT file_hash) FROM uploaded_files",
	).Scan(&total, &unique)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count uploaded files: %w", err)
	}
	return total, unique, nil
}

// List returns all uploaded-file records for snapshot export.
func (r *FileRepository) List() ([]models.BackupFileRecord, error) {
	rows, err := r.db.Query(
		"SELECT filename, file_hash, upload_date, trips_added FROM uploaded_files ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploaded files: %w", err)
	}
	defer rows.Close()

	var files []models.BackupFileRecord
	for rows.Next() {
		var f models.BackupFileRecord
		if err := rows.Scan(&f.Filename, &f.Hash, &f.UploadDate, &f.TripsAdded); err != nil {
			return nil, fmt.Errorf("failed to scan uploaded file: %w", err)
		}
		files = append(files, f)
	}

	return files, rows.Err()
}
