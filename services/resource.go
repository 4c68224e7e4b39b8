package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cargowatch/api/db"
)

// ResourceService lists the read-only resource library (security products,
// guides, partnerships).
type ResourceService struct {
	PG *sql.DB
}

func NewResourceService(pg *sql.DB) *ResourceService {
	return &ResourceService{PG: pg}
}

const resourceColumns = `id, category, COALESCE(subcategory, ''), title, description,
	COALESCE(url, ''), COALESCE(company_url, ''), COALESCE(badge, ''),
	COALESCE(icon_type, ''), COALESCE(image_url, ''), display_order, is_active, created_at, updated_at`

// ListResources returns active resources in display order, optionally
// narrowed to one category.
func (s *ResourceService) ListResources(ctx context.Context, category string) ([]db.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE is_active = true`
	args := []interface{}{}
	if category != "" && category != "all" {
		query += ` AND category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY display_order, title`

	rows, err := s.PG.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	resources := []db.Resource{}
	for rows.Next() {
		var r db.Resource
		if err := rows.Scan(
			&r.ID, &r.Category, &r.Subcategory, &r.Title, &r.Description,
			&r.URL, &r.CompanyURL, &r.Badge,
			&r.IconType, &r.ImageURL, &r.DisplayOrder, &r.IsActive, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}
