package service

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log"
	"os"

	"github.com/evdash/evdash-backend-go/internal/ingest"
	"github.com/evdash/evdash-backend-go/internal/observability/metrics"
	"github.com/evdash/evdash-backend-go/internal/repository"
	"github.com/evdash/evdash-backend-go/pkg/models"
)

// IngestService turns uploaded source database files into stored trips.
type IngestService struct {
	trips  *repository.TripRepository
	files  *repository.FileRepository
	reader *ingest.Reader
}

// NewIngestService creates a new ingest service
func NewIngestService(trips *repository.TripRepository, files *repository.FileRepository, reader *ingest.Reader) *IngestService {
	return &IngestService{trips: trips, files: files, reader: reader}
}

// IngestFile processes one uploaded source file. Duplicate trips
// (same start, end and distance as a stored trip) are skipped, and an
// already-seen file that contributes nothing new reports "skipped".
func (s *IngestService) IngestFile(path, originalName string) (*models.UploadResult, error) {
	fileHash, err := hashFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint source file: %w", err)
	}

	seenBefore, err := s.files.Exists(fileHash)
	if err != nil {
		return nil, err
	}

	trips, invalid, err := s.reader.ReadTrips(path)
	if err != nil {
		return nil, err
	}
	for i := range trips {
		trips[i].FileHash = fileHash
	}

	added, skipped, err := s.trips.InsertSourceTrips(trips)
	if err != nil {
		return nil, err
	}

	if !seenBefore {
		if err := s.files.Record(originalName, fileHash, added); err != nil {
			return nil, err
		}
	} else if added > 0 {
		if err := s.files.AddTrips(fileHash, added); err != nil {
			return nil, err
		}
	}

	// Invalid rows count as skipped so the totals add up to the
	// file's row count.
	result := &models.UploadResult{
		Status:       models.UploadStatusSuccess,
		Message:      fmt.Sprintf("file processed: %d new trips added", added),
		TripsAdded:   added,
		TripsSkipped: skipped + invalid,
		TotalInFile:  len(trips) + invalid,
		FileWasNew:   !seenBefore,
	}
	if added == 0 {
		result.Status = models.UploadStatusSkipped
		result.Message = "no new trips added (all already present)"
	}

	metrics.ObserveIngest(result.Status, added, skipped+invalid)
	log.Printf("Ingested %s: %d added, %d skipped, %d in file",
		originalName, added, skipped+invalid, len(trips)+invalid)

	return result, nil
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}
