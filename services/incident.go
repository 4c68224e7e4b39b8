package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/cargowatch/api/db"
)

// IncidentService validates and persists incident reports and answers the
// feed, map and dashboard queries.
type IncidentService struct {
	PG      *sql.DB
	Redis   *redis.Client
	Regions *RegionService

	notifier *NotificationService
}

func NewIncidentService(pg *sql.DB, rdb *redis.Client, regions *RegionService) *IncidentService {
	return &IncidentService{PG: pg, Redis: rdb, Regions: regions}
}

// SetNotificationService wires the fan-out used for new critical incidents
func (s *IncidentService) SetNotificationService(n *NotificationService) {
	s.notifier = n
}

const (
	// ListIncidents bounds: callers never pull the whole table
	defaultIncidentLimit = 200
	maxIncidentLimit     = 500

	statsCacheKey = "cargowatch:dashboard_stats"
	statsCacheTTL = 60 * time.Second
)

const incidentColumns = `id, reporter_id, incident_type, severity_level,
	COALESCE(cargo_type, ''), status, region, specific_location,
	latitude, longitude, title, description, incident_date, COALESCE(incident_time, ''),
	has_photos, has_video, evidence_count, estimated_loss,
	view_count, comment_count, share_count,
	COALESCE(reporter_name, ''), COALESCE(reporter_company, ''), COALESCE(reporter_contact, ''),
	created_at, updated_at`

func scanIncident(row interface{ Scan(...interface{}) error }) (*db.Incident, error) {
	var in db.Incident
	var lat, lng, loss sql.NullFloat64
	err := row.Scan(
		&in.ID, &in.ReporterID, &in.IncidentType, &in.SeverityLevel,
		&in.CargoType, &in.Status, &in.Region, &in.SpecificLocation,
		&lat, &lng, &in.Title, &in.Description, &in.IncidentDate, &in.IncidentTime,
		&in.HasPhotos, &in.HasVideo, &in.EvidenceCount, &loss,
		&in.ViewCount, &in.CommentCount, &in.ShareCount,
		&in.ReporterName, &in.ReporterCompany, &in.ReporterContact,
		&in.CreatedAt, &in.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat.Valid {
		in.Latitude = &lat.Float64
	}
	if lng.Valid {
		in.Longitude = &lng.Float64
	}
	if loss.Valid {
		in.EstimatedLoss = &loss.Float64
	}
	return &in, nil
}

func validateCreateIncident(req *db.CreateIncidentRequest) error {
	if strings.TrimSpace(req.IncidentType) == "" {
		return NewValidationError("incident_type", "is required")
	}
	if strings.TrimSpace(req.SeverityLevel) == "" {
		return NewValidationError("severity_level", "is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return NewValidationError("title", "is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return NewValidationError("description", "is required")
	}
	if strings.TrimSpace(req.Region) == "" {
		return NewValidationError("region", "is required")
	}
	if strings.TrimSpace(req.SpecificLocation) == "" {
		return NewValidationError("specific_location", "is required")
	}
	if req.IncidentDate.IsZero() {
		return NewValidationError("incident_date", "is required")
	}
	return nil
}

// CreateIncident inserts one incident for an approved reporter. Reporter
// attribution always comes from the user row, never from the request.
func (s *IncidentService) CreateIncident(ctx context.Context, reporter *db.User, req *db.CreateIncidentRequest) (*db.Incident, error) {
	if err := validateCreateIncident(req); err != nil {
		return nil, err
	}

	lat, lng := req.Latitude, req.Longitude
	if lat == nil || lng == nil {
		// Fall back to the region's stored center so the report still
		// lands on the map. Unknown region leaves the fields unset.
		if s.Regions != nil {
			if region, err := s.Regions.GetByName(ctx, req.Region); err == nil {
				lat, lng = region.Latitude, region.Longitude
			}
		}
	}

	now := time.Now()
	row := s.PG.QueryRowContext(ctx, `
		INSERT INTO incidents (
			id, reporter_id, incident_type, severity_level, cargo_type, status,
			region, specific_location, latitude, longitude,
			title, description, incident_date, incident_time, estimated_loss,
			reporter_name, reporter_company, reporter_contact,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, NULLIF($5, ''), $6,
			$7, $8, $9, $10,
			$11, $12, $13, NULLIF($14, ''), $15,
			$16, $17, $18,
			$19, $19
		)
		RETURNING `+incidentColumns,
		uuid.New().String(), reporter.ID, req.IncidentType, req.SeverityLevel, req.CargoType, db.IncidentActive,
		req.Region, req.SpecificLocation, lat, lng,
		req.Title, req.Description, req.IncidentDate, req.IncidentTime, req.EstimatedLoss,
		reporter.FullName, reporter.Company, reporter.Email,
		now,
	)

	incident, err := scanIncident(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create incident: %w", err)
	}

	// Fan out push/in-app notifications without blocking the response
	if s.notifier != nil && incident.SeverityLevel == db.SeverityCritical {
		go func(in db.Incident) {
			if err := s.notifier.NotifyNewIncident(context.Background(), &in); err != nil {
				log.Printf("Failed to send incident notifications: %v", err)
			}
		}(*incident)
	}

	return incident, nil
}

// ListIncidents returns the newest incidents first, optionally narrowed by
// region/severity/type. Filters are conjunctive; "" or "all" skips a filter.
func (s *IncidentService) ListIncidents(ctx context.Context, filters db.IncidentFilters, limit int) ([]db.Incident, error) {
	if limit <= 0 {
		limit = defaultIncidentLimit
	}
	if limit > maxIncidentLimit {
		limit = maxIncidentLimit
	}

	where, args := filters.WhereClause(1)
	query := `SELECT ` + incidentColumns + ` FROM incidents `
	if where != "" {
		query += where + " "
	}
	query += fmt.Sprintf("ORDER BY created_at DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := s.PG.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := []db.Incident{}
	for rows.Next() {
		in, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, *in)
	}
	return incidents, rows.Err()
}

// GetIncident returns a single incident by id
func (s *IncidentService) GetIncident(ctx context.Context, id string) (*db.Incident, error) {
	row := s.PG.QueryRowContext(ctx, `SELECT `+incidentColumns+` FROM incidents WHERE id = $1`, id)
	incident, err := scanIncident(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}
	return incident, nil
}

// IncrementViewCount bumps the view counter. Best-effort: detail pages call
// this after a successful read and only log failures.
func (s *IncidentService) IncrementViewCount(ctx context.Context, id string) error {
	_, err := s.PG.ExecContext(ctx, `
		UPDATE incidents SET view_count = view_count + 1 WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}
	return nil
}

// GetDashboardStats computes the dashboard counters, with a short redis
// cache in front so the public home page stays cheap.
func (s *IncidentService) GetDashboardStats(ctx context.Context) (*db.DashboardStats, error) {
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, statsCacheKey).Result(); err == nil {
			var stats db.DashboardStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	var stats db.DashboardStats

	if err := s.PG.QueryRowContext(ctx, `SELECT COUNT(*) FROM incidents`).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("failed to count incidents: %w", err)
	}
	if err := s.PG.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM incidents WHERE severity_level = $1
	`, db.SeverityCritical).Scan(&stats.Critical); err != nil {
		return nil, fmt.Errorf("failed to count critical incidents: %w", err)
	}
	if err := s.PG.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM incidents WHERE created_at >= $1
	`, time.Now().AddDate(0, 0, -30)).Scan(&stats.Recent); err != nil {
		return nil, fmt.Errorf("failed to count recent incidents: %w", err)
	}
	if err := s.PG.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM regions WHERE incident_count > 0
	`).Scan(&stats.ActiveRegions); err != nil {
		return nil, fmt.Errorf("failed to count active regions: %w", err)
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(&stats); err == nil {
			if err := s.Redis.Set(ctx, statsCacheKey, payload, statsCacheTTL).Err(); err != nil {
				log.Printf("Failed to cache dashboard stats: %v", err)
			}
		}
	}

	return &stats, nil
}

// InvalidateStatsCache drops the cached dashboard counters. The region
// stats worker calls this after recomputing incident counts.
func (s *IncidentService) InvalidateStatsCache(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, statsCacheKey).Err(); err != nil {
		log.Printf("Failed to invalidate stats cache: %v", err)
	}
}
