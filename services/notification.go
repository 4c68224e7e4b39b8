package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cargowatch/api/db"
)

// NotificationService creates in-app notifications and pushes them to
// devices via FCM when a token is registered.
type NotificationService struct {
	PG  *sql.DB
	FCM *FCMService
}

func NewNotificationService(pg *sql.DB, fcm *FCMService) *NotificationService {
	return &NotificationService{PG: pg, FCM: fcm}
}

// NotifyNewIncident fans a new-incident alert out to every user who has
// notifications enabled, excluding the reporter.
func (s *NotificationService) NotifyNewIncident(ctx context.Context, incident *db.Incident) error {
	rows, err := s.PG.QueryContext(ctx, `
		SELECT id, COALESCE(fcm_token, '')
		FROM users
		WHERE notifications_enabled = true
		  AND account_status = $1
		  AND id <> $2
	`, db.AccountActive, incident.ReporterID)
	if err != nil {
		return fmt.Errorf("failed to list notification recipients: %w", err)
	}
	defer rows.Close()

	type recipient struct {
		id       string
		fcmToken string
	}
	var recipients []recipient
	for rows.Next() {
		var r recipient
		if err := rows.Scan(&r.id, &r.fcmToken); err != nil {
			return fmt.Errorf("failed to scan recipient: %w", err)
		}
		recipients = append(recipients, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	title := fmt.Sprintf("%s incident reported in %s",
		cases.Title(language.English).String(incident.SeverityLevel), incident.Region)
	message := incident.Title

	for _, r := range recipients {
		if err := s.create(ctx, r.id, "new_incident", title, message, incident.ID); err != nil {
			log.Printf("Failed to create notification for user %s: %v", r.id, err)
			continue
		}
		if r.fcmToken != "" && s.FCM != nil {
			if err := s.FCM.SendPush(ctx, r.fcmToken, title, message, map[string]string{
				"incident_id": incident.ID,
				"type":        "new_incident",
			}); err != nil {
				log.Printf("Failed to push notification to user %s: %v", r.id, err)
			}
		}
	}
	return nil
}

func (s *NotificationService) create(ctx context.Context, userID, notifType, title, message, incidentID string) error {
	_, err := s.PG.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, link_incident_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
	`, uuid.New().String(), userID, notifType, title, message, incidentID, time.Now())
	return err
}

// ListNotifications returns a user's notifications, newest first
func (s *NotificationService) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]db.Notification, error) {
	query := `
		SELECT id, user_id, type, title, message,
			COALESCE(link_url, ''), COALESCE(link_incident_id::text, ''),
			is_read, read_at, created_at
		FROM notifications
		WHERE user_id = $1`
	if unreadOnly {
		query += ` AND is_read = false`
	}
	query += ` ORDER BY created_at DESC LIMIT 100`

	rows, err := s.PG.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []db.Notification{}
	for rows.Next() {
		var n db.Notification
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&n.LinkURL, &n.LinkIncidentID,
			&n.IsRead, &n.ReadAt, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead marks one notification as read, scoped to its owner
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	result, err := s.PG.ExecContext(ctx, `
		UPDATE notifications SET is_read = true, read_at = $3
		WHERE id = $1 AND user_id = $2
	`, notificationID, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.PG.ExecContext(ctx, `
		UPDATE notifications SET is_read = true, read_at = $2
		WHERE user_id = $1 AND is_read = false
	`, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
