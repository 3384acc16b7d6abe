package service

import (
	"github.com/evdash/evdash-backend-go/internal/repository"
	"github.com/evdash/evdash-backend-go/pkg/models"
)

// TripService handles business logic for trips
type TripService struct {
	repo *repository.TripRepository
}

// NewTripService creates a new trip service
func NewTripService(repo *repository.TripRepository) *TripService {
	return &TripService{repo: repo}
}

// ListTrips retrieves trips ordered by start timestamp.
func (s *TripService) ListTrips(limit int, order string) ([]models.Trip, error) {
	return s.repo.ListTrips(limit, order)
}
