package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/cargowatch/api/db"
)

// UserService owns the profile lifecycle: signup, verification, approval
// transitions and self-service profile edits.
type UserService struct {
	PG       *sql.DB
	Supabase *SupabaseAuthService
}

func NewUserService(pg *sql.DB, supabase *SupabaseAuthService) *UserService {
	return &UserService{PG: pg, Supabase: supabase}
}

const minPasswordLength = 8

var validRoles = map[string]bool{
	"member":          true,
	"driver":          true,
	"security":        true,
	"law_enforcement": true,
	"admin":           true,
}

const userColumns = `id, auth_id, full_name, email,
	COALESCE(phone_number, ''), COALESCE(company, ''), COALESCE(company_role, ''),
	COALESCE(avatar_url, ''), COALESCE(bio, ''), role,
	COALESCE(mc_number, ''), COALESCE(dot_number, ''), COALESCE(badge_number, ''), COALESCE(department, ''),
	email_verified, email_verified_at, approval_status, COALESCE(rejection_reason, ''), account_status,
	notifications_enabled, email_alerts_enabled, COALESCE(fcm_token, ''),
	terms_accepted_at, created_at, updated_at, last_login_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*db.User, error) {
	var u db.User
	err := row.Scan(
		&u.ID, &u.AuthID, &u.FullName, &u.Email,
		&u.PhoneNumber, &u.Company, &u.CompanyRole,
		&u.AvatarURL, &u.Bio, &u.Role,
		&u.MCNumber, &u.DOTNumber, &u.BadgeNumber, &u.Department,
		&u.EmailVerified, &u.EmailVerifiedAt, &u.ApprovalStatus, &u.RejectionReason, &u.AccountStatus,
		&u.NotificationsEnabled, &u.EmailAlertsEnabled, &u.FCMToken,
		&u.TermsAcceptedAt, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ValidateRegistration enforces the signup preconditions before anything is
// sent to Supabase or written to the store.
func (s *UserService) ValidateRegistration(req *db.RegisterRequest) error {
	if strings.TrimSpace(req.Email) == "" {
		return NewValidationError("email", "is required")
	}
	if req.Password == "" {
		return NewValidationError("password", "is required")
	}
	if len(req.Password) < minPasswordLength {
		return NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if req.Password != req.ConfirmPassword {
		return NewValidationError("confirm_password", "does not match password")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return NewValidationError("full_name", "is required")
	}
	if strings.TrimSpace(req.Company) == "" {
		return NewValidationError("company", "is required")
	}
	if req.Role != "" && !validRoles[req.Role] {
		return NewValidationError("role", "is not a valid role")
	}
	if !req.TermsAccepted {
		return NewValidationError("terms_accepted", "you must accept the terms and conditions")
	}
	return nil
}

// Register validates the payload, creates the Supabase auth account and
// inserts the profile row with approval pending.
func (s *UserService) Register(ctx context.Context, req *db.RegisterRequest) (*db.User, error) {
	if err := s.ValidateRegistration(req); err != nil {
		return nil, err
	}

	authUser, err := s.Supabase.SignUp(ctx, req.Email, req.Password, map[string]interface{}{
		"full_name": req.FullName,
		"company":   req.Company,
		"role":      req.Role,
	})
	if err != nil {
		return nil, err
	}

	return s.CreateProfile(ctx, req, authUser.ID)
}

// CreateProfile inserts exactly one user row for a Supabase auth account.
// A duplicate email surfaces as ErrConflict via the unique constraint,
// never as a silent overwrite.
func (s *UserService) CreateProfile(ctx context.Context, req *db.RegisterRequest, authID string) (*db.User, error) {
	role := req.Role
	if role == "" {
		role = "member"
	}
	now := time.Now()

	row := s.PG.QueryRowContext(ctx, `
		INSERT INTO users (
			id, auth_id, full_name, email, phone_number, company, company_role, role,
			mc_number, dot_number, badge_number, department,
			email_verified, approval_status, account_status,
			notifications_enabled, email_alerts_enabled,
			terms_accepted_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''), $8,
			NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''),
			false, $13, $14, true, true, $15, $16, $16
		)
		RETURNING `+userColumns,
		uuid.New().String(), authID, req.FullName, req.Email, req.PhoneNumber, req.Company, req.CompanyRole, role,
		req.MCNumber, req.DOTNumber, req.BadgeNumber, req.Department,
		db.ApprovalPending, db.AccountActive, now, now,
	)

	user, err := scanUser(row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user profile: %w", err)
	}
	return user, nil
}

// GetByAuthID loads the user row for a Supabase auth id
func (s *UserService) GetByAuthID(ctx context.Context, authID string) (*db.User, error) {
	row := s.PG.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE auth_id = $1`, authID)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// GetByID loads a user row by primary key
func (s *UserService) GetByID(ctx context.Context, id string) (*db.User, error) {
	row := s.PG.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// MarkEmailVerified records that the identity gateway confirmed the email.
// Callers treat this as best-effort: a failure here must never block the
// post-verification redirect.
func (s *UserService) MarkEmailVerified(ctx context.Context, authID string) error {
	_, err := s.PG.ExecContext(ctx, `
		UPDATE users
		SET email_verified = true, email_verified_at = $1, updated_at = $1
		WHERE auth_id = $2 AND email_verified = false
	`, time.Now(), authID)
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	return nil
}

// UpdateProfile applies a partial profile edit. Only supplied fields change.
func (s *UserService) UpdateProfile(ctx context.Context, id string, req *db.UpdateProfileRequest) (*db.User, error) {
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return nil, NewValidationError("full_name", "cannot be empty")
	}

	row := s.PG.QueryRowContext(ctx, `
		UPDATE users SET
			full_name    = COALESCE($2, full_name),
			phone_number = COALESCE($3, phone_number),
			company      = COALESCE($4, company),
			company_role = COALESCE($5, company_role),
			bio          = COALESCE($6, bio),
			avatar_url   = COALESCE($7, avatar_url),
			updated_at   = $8
		WHERE id = $1
		RETURNING `+userColumns,
		id, req.FullName, req.PhoneNumber, req.Company, req.CompanyRole, req.Bio, req.AvatarURL, time.Now(),
	)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// UpdateNotificationPreferences applies a partial preferences edit
func (s *UserService) UpdateNotificationPreferences(ctx context.Context, id string, req *db.UpdateNotificationPreferencesRequest) (*db.User, error) {
	row := s.PG.QueryRowContext(ctx, `
		UPDATE users SET
			notifications_enabled = COALESCE($2, notifications_enabled),
			email_alerts_enabled  = COALESCE($3, email_alerts_enabled),
			updated_at            = $4
		WHERE id = $1
		RETURNING `+userColumns,
		id, req.NotificationsEnabled, req.EmailAlertsEnabled, time.Now(),
	)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update notification preferences: %w", err)
	}
	return user, nil
}

// UpdateFCMToken stores the device push token for the user
func (s *UserService) UpdateFCMToken(ctx context.Context, id, token string) error {
	_, err := s.PG.ExecContext(ctx, `
		UPDATE users SET fcm_token = NULLIF($2, ''), updated_at = $3 WHERE id = $1
	`, id, token, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update fcm token: %w", err)
	}
	return nil
}

// RecordLogin stamps last_login_at. Best-effort, callers only log failures.
func (s *UserService) RecordLogin(ctx context.Context, id string) error {
	_, err := s.PG.ExecContext(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

// ListPendingUsers returns users awaiting admin review, oldest first
func (s *UserService) ListPendingUsers(ctx context.Context) ([]db.User, error) {
	rows, err := s.PG.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE approval_status = $1
		ORDER BY created_at ASC
	`, db.ApprovalPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending users: %w", err)
	}
	defer rows.Close()

	var users []db.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Approve grants the user access to protected features
func (s *UserService) Approve(ctx context.Context, id string) (*db.User, error) {
	return s.setApproval(ctx, id, db.ApprovalApproved, "")
}

// Reject denies the application, keeping the reason for the status page
func (s *UserService) Reject(ctx context.Context, id, reason string) (*db.User, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, NewValidationError("reason", "is required when rejecting a user")
	}
	return s.setApproval(ctx, id, db.ApprovalRejected, reason)
}

func (s *UserService) setApproval(ctx context.Context, id, status, reason string) (*db.User, error) {
	row := s.PG.QueryRowContext(ctx, `
		UPDATE users SET approval_status = $2, rejection_reason = NULLIF($3, ''), updated_at = $4
		WHERE id = $1
		RETURNING `+userColumns,
		id, status, reason, time.Now(),
	)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update approval status: %w", err)
	}
	return user, nil
}

// Suspend deactivates an approved account for post-approval moderation
func (s *UserService) Suspend(ctx context.Context, id string) (*db.User, error) {
	return s.setAccountStatus(ctx, id, db.AccountSuspended)
}

// Reinstate re-activates a suspended account
func (s *UserService) Reinstate(ctx context.Context, id string) (*db.User, error) {
	return s.setAccountStatus(ctx, id, db.AccountActive)
}

func (s *UserService) setAccountStatus(ctx context.Context, id, status string) (*db.User, error) {
	row := s.PG.QueryRowContext(ctx, `
		UPDATE users SET account_status = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+userColumns,
		id, status, time.Now(),
	)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update account status: %w", err)
	}
	return user, nil
}
