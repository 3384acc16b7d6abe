package repository

import (
	"database/sql"
	"fmt"

	"github.com/evdash/evdash-backend-go/pkg/models"
)

// StatsRepository handles aggregate queries over the trip store
type StatsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GeneralStats computes full-history aggregates in one pass.
func (r *StatsRepository) GeneralStats() (models.GeneralStats, error) {
	var s models.GeneralStats
	err := r.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(trip), 0),
			COALESCE(SUM(electricity), 0),
			COALESCE(AVG(efficiency), 0),
			COALESCE(MIN(efficiency), 0),
			COALESCE(MAX(efficiency), 0),
			COALESCE(AVG(CASE WHEN duration > 0 THEN trip / (duration / 3600.0) END), 0)
		FROM trips
	`).Scan(
		&s.TotalTrips, &s.TotalDistance, &s.TotalConsumption,
		&s.AvgEfficiency, &s.MinEfficiency, &s.MaxEfficiency, &s.AvgSpeed,
	)
	if err != nil {
		return models.GeneralStats{}, fmt.Errorf("failed to compute general stats: %w", err)
	}
	return s, nil
}

// ByDistance groups trips into short/medium/long buckets, ordered
// short to long.
func (r *StatsRepository) ByDistance() ([]models.DistanceBucket, error) {
	rows, err := r.db.Query(`
		SELECT
			CASE
				WHEN trip < 5 THEN ?
				WHEN trip <= 20 THEN ?
				ELSE ?
			END AS category,
			COUNT(*),
			COALESCE(AVG(efficiency), 0)
		FROM trips
		WHERE trip > 0
		GROUP BY category
		ORDER BY MIN(trip)
	`, models.DistanceCategoryShort, models.DistanceCategoryMedium, models.DistanceCategoryLong)
	if err != nil {
		return nil, fmt.Errorf("failed to query distance buckets: %w", err)
	}
	defer rows.Close()

	var buckets []models.DistanceBucket
	for rows.Next() {
		var b models.DistanceBucket
		if err := rows.Scan(&b.Category, &b.Count, &b.AvgEfficiency); err != nil {
			return nil, fmt.Errorf("failed to scan distance bucket: %w", err)
		}
		buckets = append(buckets, b)
	}

	return buckets, rows.Err()
}

// Monthly rolls trips up per calendar month, newest first, at most
// the given number of months.
func (r *StatsRepository) Monthly(limit int) ([]models.MonthlyStat, error) {
	if limit < 1 {
		limit = 12
	}

	rows, err := r.db.Query(`
		SELECT
			strftime('%Y-%m', start_datetime) AS month_str,
			COUNT(*),
			COALESCE(SUM(trip), 0),
			COALESCE(SUM(electricity), 0),
			COALESCE(AVG(efficiency), 0)
		FROM trips
		GROUP BY month_str
		ORDER BY month_str DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly stats: %w", err)
	}
	defer rows.Close()

	var stats []models.MonthlyStat
	for rows.Next() {
		var m models.MonthlyStat
		err := rows.Scan(
			&m.Month, &m.TripCount, &m.TotalDistance,
			&m.TotalConsumption, &m.AvgEfficiency,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan monthly stat: %w", err)
		}
		stats = append(stats, m)
	}

	return stats, rows.Err()
}
