package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cargowatch/api/db"
)

// RegionService serves the region reference data used for filtering, map
// centers and hotspot rankings.
type RegionService struct {
	PG *sql.DB
}

func NewRegionService(pg *sql.DB) *RegionService {
	return &RegionService{PG: pg}
}

const regionColumns = `id, name, state, city, latitude, longitude,
	is_priority, priority_rank, incident_count, COALESCE(description, ''), created_at, updated_at`

func scanRegion(row interface{ Scan(...interface{}) error }) (*db.Region, error) {
	var r db.Region
	var lat, lng sql.NullFloat64
	var rank sql.NullInt64
	err := row.Scan(
		&r.ID, &r.Name, &r.State, &r.City, &lat, &lng,
		&r.IsPriority, &rank, &r.IncidentCount, &r.Description, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat.Valid {
		r.Latitude = &lat.Float64
	}
	if lng.Valid {
		r.Longitude = &lng.Float64
	}
	if rank.Valid {
		n := int(rank.Int64)
		r.PriorityRank = &n
	}
	return &r, nil
}

// ListRegions returns all regions ordered by name
func (s *RegionService) ListRegions(ctx context.Context) ([]db.Region, error) {
	rows, err := s.PG.QueryContext(ctx, `SELECT `+regionColumns+` FROM regions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	defer rows.Close()

	regions := []db.Region{}
	for rows.Next() {
		r, err := scanRegion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, *r)
	}
	return regions, rows.Err()
}

// GetByName looks up a region by its unique name
func (s *RegionService) GetByName(ctx context.Context, name string) (*db.Region, error) {
	row := s.PG.QueryRowContext(ctx, `SELECT `+regionColumns+` FROM regions WHERE name = $1`, name)
	region, err := scanRegion(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get region: %w", err)
	}
	return region, nil
}

// TopByIncidentCount returns the n hottest regions for the dashboard
func (s *RegionService) TopByIncidentCount(ctx context.Context, n int) ([]db.Region, error) {
	if n <= 0 {
		n = 5
	}
	rows, err := s.PG.QueryContext(ctx, `
		SELECT `+regionColumns+` FROM regions
		ORDER BY incident_count DESC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list top regions: %w", err)
	}
	defer rows.Close()

	regions := []db.Region{}
	for rows.Next() {
		r, err := scanRegion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, *r)
	}
	return regions, rows.Err()
}

// RecomputeIncidentCounts refreshes the cached per-region counters from the
// incidents table. The counters are an eventually-consistent read model:
// incident inserts never touch them, only this batch does.
func (s *RegionService) RecomputeIncidentCounts(ctx context.Context) (int64, error) {
	result, err := s.PG.ExecContext(ctx, `
		UPDATE regions r SET
			incident_count = sub.cnt,
			updated_at = $1
		FROM (
			SELECT r2.id, COUNT(i.id) AS cnt
			FROM regions r2
			LEFT JOIN incidents i ON i.region = r2.name
			GROUP BY r2.id
		) sub
		WHERE r.id = sub.id AND r.incident_count <> sub.cnt
	`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to recompute region incident counts: %w", err)
	}
	updated, _ := result.RowsAffected()
	return updated, nil
}
