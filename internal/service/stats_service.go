package service

import (
	"github.com/evdash/evdash-backend-go/internal/repository"
	"github.com/evdash/evdash-backend-go/pkg/models"
)

// StatsService assembles aggregate statistics for the dashboard.
type StatsService struct {
	stats *repository.StatsRepository
}

// NewStatsService creates a new stats service
func NewStatsService(stats *repository.StatsRepository) *StatsService {
	return &StatsService{stats: stats}
}

// ConsumptionStats builds the full /api/consumption payload: general
// totals, distance buckets and a 12-month rollup.
func (s *StatsService) ConsumptionStats() (*models.ConsumptionStats, error) {
	general, err := s.stats.GeneralStats()
	if err != nil {
		return nil, err
	}

	byDistance, err := s.stats.ByDistance()
	if err != nil {
		return nil, err
	}

	monthly, err := s.stats.Monthly(12)
	if err != nil {
		return nil, err
	}

	return &models.ConsumptionStats{
		General:    general,
		ByDistance: byDistance,
		Monthly:    monthly,
	}, nil
}

// Monthly returns the rolled-up monthly figures, newest first.
func (s *StatsService) Monthly(limit int) ([]models.MonthlyStat, error) {
	return s.stats.Monthly(limit)
}
