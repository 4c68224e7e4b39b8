package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cargowatch/api/db"
)

// EvidenceService lists evidence records. Files are uploaded to Supabase
// Storage by the frontend; only the resulting rows are served here.
type EvidenceService struct {
	PG *sql.DB
}

func NewEvidenceService(pg *sql.DB) *EvidenceService {
	return &EvidenceService{PG: pg}
}

// ListByIncident returns the evidence attached to an incident
func (s *EvidenceService) ListByIncident(ctx context.Context, incidentID string) ([]db.Evidence, error) {
	rows, err := s.PG.QueryContext(ctx, `
		SELECT id, incident_id, uploaded_by, file_type, file_url, file_name,
			file_size, COALESCE(mime_type, ''), COALESCE(caption, ''), uploaded_at
		FROM evidence
		WHERE incident_id = $1
		ORDER BY uploaded_at ASC
	`, incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list evidence: %w", err)
	}
	defer rows.Close()

	items := []db.Evidence{}
	for rows.Next() {
		var e db.Evidence
		var size sql.NullInt64
		if err := rows.Scan(
			&e.ID, &e.IncidentID, &e.UploadedBy, &e.FileType, &e.FileURL, &e.FileName,
			&size, &e.MimeType, &e.Caption, &e.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan evidence: %w", err)
		}
		if size.Valid {
			e.FileSize = &size.Int64
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
