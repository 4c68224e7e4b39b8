package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cargowatch/api/db"
)

// CommentService handles incident discussion. Creating a comment bumps the
// incident's comment counter in the same transaction.
type CommentService struct {
	PG *sql.DB
}

func NewCommentService(pg *sql.DB) *CommentService {
	return &CommentService{PG: pg}
}

// CreateComment inserts a comment and increments the incident counter
func (s *CommentService) CreateComment(ctx context.Context, user *db.User, incidentID string, req *db.CreateCommentRequest) (*db.Comment, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, NewValidationError("content", "is required")
	}

	tx, err := s.PG.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	comment := db.Comment{
		ID:              uuid.New().String(),
		IncidentID:      incidentID,
		UserID:          user.ID,
		Content:         req.Content,
		ParentCommentID: req.ParentCommentID,
		CreatedAt:       now,
		UpdatedAt:       now,
		AuthorName:      user.FullName,
		AuthorCompany:   user.Company,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO comments (id, incident_id, user_id, content, parent_comment_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $6)
	`, comment.ID, comment.IncidentID, comment.UserID, comment.Content, comment.ParentCommentID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE incidents SET comment_count = comment_count + 1, updated_at = $2 WHERE id = $1
	`, incidentID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update comment count: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit comment: %w", err)
	}
	return &comment, nil
}

// ListComments returns the visible comments for an incident, oldest first
func (s *CommentService) ListComments(ctx context.Context, incidentID string) ([]db.Comment, error) {
	rows, err := s.PG.QueryContext(ctx, `
		SELECT c.id, c.incident_id, c.user_id, c.content, COALESCE(c.parent_comment_id::text, ''),
			c.is_edited, c.is_flagged, c.is_deleted, c.created_at, c.updated_at,
			u.full_name, COALESCE(u.company, '')
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.incident_id = $1 AND c.is_deleted = false
		ORDER BY c.created_at ASC
	`, incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []db.Comment{}
	for rows.Next() {
		var c db.Comment
		if err := rows.Scan(
			&c.ID, &c.IncidentID, &c.UserID, &c.Content, &c.ParentCommentID,
			&c.IsEdited, &c.IsFlagged, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt,
			&c.AuthorName, &c.AuthorCompany,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
