package service

import (
	"os"
	"time"

	"github.com/evdash/evdash-backend-go/internal/repository"
	"github.com/evdash/evdash-backend-go/pkg/models"
)

// StatusService reports store and system counters.
type StatusService struct {
	trips    *repository.TripRepository
	files    *repository.FileRepository
	dbPath   string
	timezone string
}

// NewStatusService creates a new status service
func NewStatusService(trips *repository.TripRepository, files *repository.FileRepository, dbPath, timezone string) *StatusService {
	return &StatusService{trips: trips, files: files, dbPath: dbPath, timezone: timezone}
}

// DBStatus builds the /api/db_status payload.
func (s *StatusService) DBStatus() (*models.DBStatus, error) {
	totalTrips, err := s.trips.Count()
	if err != nil {
		return nil, err
	}
	totalFiles, uniqueFiles, err := s.files.Counts()
	if err != nil {
		return nil, err
	}
	firstTrip, lastTrip, err := s.trips.DateRange()
	if err != nil {
		return nil, err
	}

	return &models.DBStatus{
		TotalTrips:  totalTrips,
		UniqueFiles: uniqueFiles,
		TotalFiles:  totalFiles,
		FirstTrip:   orNA(firstTrip),
		LastTrip:    orNA(lastTrip),
		ServerTime:  time.Now().Format(time.RFC3339),
	}, nil
}

// SystemStatus builds the /api/system/status payload.
func (s *StatusService) SystemStatus() (*models.SystemStatus, error) {
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
	distance, consumption, err := s.trips.Totals("", "")
	if err != nil {
		return nil, err
	}

	var sizeBytes int64
	if info, err := os.Stat(s.dbPath); err == nil {
		sizeBytes = info.Size()
	}

	return &models.SystemStatus{
		Database: models.DatabaseStatus{
			TotalTrips:       totalTrips,
			TotalFiles:       totalFiles,
			FirstTrip:        orNA(firstTrip),
			LastTrip:         orNA(lastTrip),
			TotalDistance:    round2(distance),
			TotalConsumption: round2(consumption),
			SizeBytes:        sizeBytes,
			SizeMB:           round2(float64(sizeBytes) / (1024 * 1024)),
		},
		System: models.SystemInfo{
			Version:         AppVersion,
			BackupSupported: true,
			ServerTime:      time.Now().Format(time.RFC3339),
			Timezone:        s.timezone,
		},
	}, nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
