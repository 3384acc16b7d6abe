package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/evdash/evdash-backend-go/internal/database"
	"github.com/evdash/evdash-backend-go/pkg/models"
)

// TripRepository handles database operations for trips
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

const tripColumns = `id, start_datetime, end_datetime, duration, trip, electricity, efficiency,
	CASE WHEN duration > 0 THEN ROUND(trip / (duration / 3600.0), 1) ELSE NULL END AS avg_speed`

// ListTrips retrieves trips ordered by start timestamp. A limit <= 0
// returns the full set.
func (r *TripRepository) ListTrips(limit int, order string) ([]models.Trip, error) {
	dir := "DESC"
	if strings.EqualFold(order, "ASC") {
		dir = "ASC"
	}

	query := fmt.Sprintf("SELECT %s FROM trips ORDER BY start_timestamp %s", tripColumns, dir)

	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		var t models.Trip
		var efficiency, avgSpeed sql.NullFloat64
		err := rows.Scan(
			&t.ID, &t.StartTime, &t.EndTime, &t.Duration,
			&t.Distance, &t.Electricity, &efficiency, &avgSpeed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		if efficiency.Valid {
			t.Efficiency = &efficiency.Float64
		}
		if avgSpeed.Valid {
			t.AvgSpeed = &avgSpeed.Float64
		}
		trips = append(trips, t)
	}

	return trips, rows.Err()
}

// InsertSourceTrips persists trips from one source file inside a single
// transaction. A row matching an existing (start, end, distance)
// fingerprint is skipped, not an error.
func (r *TripRepository) InsertSourceTrips(trips []models.SourceTrip) (added, skipped int, err error) {
	err = database.TransactionOn(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR IGNORE INTO trips
			(original_id, start_timestamp, end_timestamp, duration,
			 trip, electricity, efficiency, start_datetime, end_datetime, file_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare trip insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range trips {
			res, err := stmt.Exec(
				t.OriginalID, t.StartTimestamp, t.EndTimestamp, t.Duration,
				t.Distance, t.Electricity, nullableFloat(t.Efficiency),
				t.StartDatetime, t.EndDatetime, t.FileHash,
			)
			if err != nil {
				return fmt.Errorf("failed to insert trip: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read rows affected: %w", err)
			}
			if n > 0 {
				added++
			} else {
				skipped++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return added, skipped, nil
}

// ReplaceAll atomically swaps the entire store for the given snapshot
// contents. Either everything is applied or nothing is.
func (r *TripRepository) ReplaceAll(trips []models.SourceTrip, files []models.BackupFileRecord) error {
	return database.TransactionOn(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM trips"); err != nil {
			return fmt.Errorf("failed to clear trips: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM uploaded_files"); err != nil {
			return fmt.Errorf("failed to clear uploaded files: %w", err)
		}

		tripStmt, err := tx.Prepare(`
			INSERT INTO trips
			(original_id, start_timestamp, end_timestamp, duration,
			 trip, electricity, efficiency, start_datetime, end_datetime, file_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare trip insert: %w", err)
		}
		defer tripStmt.Close()

		for _, t := range trips {
			_, err := tripStmt.Exec(
				t.OriginalID, t.StartTimestamp, t.EndTimestamp, t.Duration,
				t.Distance, t.Electricity, nullableFloat(t.Efficiency),
				t.StartDatetime, t.EndDatetime, t.FileHash,
			)
			if err != nil {
				return fmt.Errorf("failed to restore trip: %w", err)
			}
		}

		fileStmt, err := tx.Prepare(`
			INSERT INTO uploaded_files (filename, file_hash, upload_date, trips_added)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare file insert: %w", err)
		}
		defer fileStmt.Close()

		for _, f := range files {
			if _, err := fileStmt.Exec(f.Filename, f.Hash, f.UploadDate, f.TripsAdded); err != nil {
				return fmt.Errorf("failed to restore uploaded file record: %w", err)
			}
		}

		return nil
	})
}

// Count returns the number of stored trips.
func (r *TripRepository) Count() (int64, error) {
	var n int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM trips").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count trips: %w", err)
	}
	return n, nil
}

// DateRange returns the first and last trip start datetimes, or empty
// strings when the store is empty.
func (r *TripRepository) DateRange() (first, last string, err error) {
	var firstNS, lastNS sql.NullString
	err = r.db.QueryRow("SELECT MIN(start_datetime), MAX(start_datetime) FROM trips").
		Scan(&firstNS, &lastNS)
	if err != nil {
		return "", "", fmt.Errorf("failed to get trip date range: %w", err)
	}
	return firstNS.String, lastNS.String, nil
}

// Totals sums distance and consumption, optionally restricted to an
// inclusive [from, to] date range on the trip start date.
func (r *TripRepository) Totals(dateFrom, dateTo string) (distanceKm, consumptionKwh float64, err error) {
	query := `SELECT COALESCE(SUM(trip), 0), COALESCE(SUM(electricity), 0) FROM trips`
	var args []interface{}
	if dateFrom != "" && dateTo != "" {
		query += " WHERE date(start_datetime) BETWEEN ? AND ?"
		args = append(args, dateFrom, dateTo)
	}

	if err := r.db.QueryRow(query, args...).Scan(&distanceKm, &consumptionKwh); err != nil {
		return 0, 0, fmt.Errorf("failed to sum trip totals: %w", err)
	}
	return distanceKm, consumptionKwh, nil
}

// AllSourceTrips reads every stored trip row in insertion order, for
// snapshot export and restore.
func (r *TripRepository) AllSourceTrips() ([]models.SourceTrip, error) {
	rows, err := r.db.Query(`
		SELECT original_id, start_timestamp, end_timestamp, duration,
		       trip, electricity, efficiency, start_datetime, end_datetime, file_hash
		FROM trips ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trip rows: %w", err)
	}
	defer rows.Close()

	var trips []models.SourceTrip
	for rows.Next() {
		var t models.SourceTrip
		var efficiency sql.NullFloat64
		err := rows.Scan(
			&t.OriginalID, &t.StartTimestamp, &t.EndTimestamp, &t.Duration,
			&t.Distance, &t.Electricity, &efficiency,
			&t.StartDatetime, &t.EndDatetime, &t.FileHash,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip row: %w", err)
		}
		if efficiency.Valid {
			t.Efficiency = &efficiency.Float64
		}
		trips = append(trips, t)
	}

	return trips, rows.Err()
}

func nullableFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
