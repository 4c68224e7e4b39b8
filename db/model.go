package db

import "time"

// ===========================
// USER MODELS
// ===========================

// User approval workflow states. Approval is an admin-controlled gate,
// independent from Supabase email verification.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"

	AccountActive    = "active"
	AccountSuspended = "suspended"
)

// User represents a registered CargoWatch member, keyed to a Supabase auth user
type User struct {
	ID     string `json:"id"`
	AuthID string `json:"auth_id"`

	// Profile
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Company     string `json:"company,omitempty"`
	CompanyRole string `json:"company_role,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Bio         string `json:"bio,omitempty"`

	// Role: member, driver, security, law_enforcement, admin
	Role string `json:"role"`

	// Role-specific identifiers from signup
	MCNumber    string `json:"mc_number,omitempty"`
	DOTNumber   string `json:"dot_number,omitempty"`
	BadgeNumber string `json:"badge_number,omitempty"`
	Department  string `json:"department,omitempty"`

	// Verification and approval gates
	EmailVerified   bool       `json:"email_verified"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	ApprovalStatus  string     `json:"approval_status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	AccountStatus   string     `json:"account_status"`

	// Notification preferences
	NotificationsEnabled bool   `json:"notifications_enabled"`
	EmailAlertsEnabled   bool   `json:"email_alerts_enabled"`
	FCMToken             string `json:"fcm_token,omitempty"`

	TermsAcceptedAt *time.Time `json:"terms_accepted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
}

// IsApproved reports whether the user may access protected features.
// Approved AND active is the sole condition granting access.
func (u *User) IsApproved() bool {
	return u.ApprovalStatus == ApprovalApproved && u.AccountStatus == AccountActive
}

// RegisterRequest is the signup payload. The password is forwarded to
// Supabase Auth and never stored by this service.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name"`
	PhoneNumber     string `json:"phone_number,omitempty"`
	Company         string `json:"company"`
	CompanyRole     string `json:"company_role,omitempty"`
	Role            string `json:"role"`
	MCNumber        string `json:"mc_number,omitempty"`
	DOTNumber       string `json:"dot_number,omitempty"`
	BadgeNumber     string `json:"badge_number,omitempty"`
	Department      string `json:"department,omitempty"`
	TermsAccepted   bool   `json:"terms_accepted"`
}

type UpdateProfileRequest struct {
	FullName    *string `json:"full_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Company     *string `json:"company,omitempty"`
	CompanyRole *string `json:"company_role,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

type UpdateNotificationPreferencesRequest struct {
	NotificationsEnabled *bool `json:"notifications_enabled,omitempty"`
	EmailAlertsEnabled   *bool `json:"email_alerts_enabled,omitempty"`
}

// ApprovalStatusResponse mirrors the fields the status page needs
type ApprovalStatusResponse struct {
	ApprovalStatus  string `json:"approval_status"`
	EmailVerified   bool   `json:"email_verified"`
	AccountStatus   string `json:"account_status"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	IsApproved      bool   `json:"is_approved"`
}

// ===========================
// INCIDENT MODELS
// ===========================

// Incident statuses
const (
	IncidentActive        = "active"
	IncidentInvestigating = "investigating"
	IncidentResolved      = "resolved"
	IncidentClosed        = "closed"
)

// Severity levels
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Incident represents one reported theft or suspicious-activity event
type Incident struct {
	ID         string `json:"id"`
	ReporterID string `json:"reporter_id"`

	// Classification
	IncidentType  string `json:"incident_type"` // theft, suspicious, tampering, attempted_break_in
	SeverityLevel string `json:"severity_level"`
	CargoType     string `json:"cargo_type,omitempty"` // electronics, pharmaceuticals, food, general
	Status        string `json:"status"`

	// Location. Region is a named bucket, not a foreign key.
	Region           string   `json:"region"`
	SpecificLocation string   `json:"specific_location"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`

	// Details
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	IncidentDate time.Time `json:"incident_date"`
	IncidentTime string    `json:"incident_time,omitempty"`

	// Evidence flags kept in sync by the evidence upload path (Supabase Storage)
	HasPhotos     bool `json:"has_photos"`
	HasVideo      bool `json:"has_video"`
	EvidenceCount int  `json:"evidence_count"`

	EstimatedLoss *float64 `json:"estimated_loss,omitempty"`

	// Engagement counters. Views bump on read, comments on insert;
	// shares have no mutation path yet and stay at zero.
	ViewCount    int `json:"view_count"`
	CommentCount int `json:"comment_count"`
	ShareCount   int `json:"share_count"`

	// Reporter attribution, always derived from the authenticated user row
	ReporterName    string `json:"reporter_name,omitempty"`
	ReporterCompany string `json:"reporter_company,omitempty"`
	ReporterContact string `json:"reporter_contact,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateIncidentRequest is the submission payload. Reporter identity is
// intentionally absent: it comes from the session, never the client.
type CreateIncidentRequest struct {
	IncidentType     string    `json:"incident_type" binding:"required"`
	SeverityLevel    string    `json:"severity_level" binding:"required"`
	Title            string    `json:"title" binding:"required"`
	Description      string    `json:"description" binding:"required"`
	Region           string    `json:"region" binding:"required"`
	SpecificLocation string    `json:"specific_location" binding:"required"`
	IncidentDate     time.Time `json:"incident_date" binding:"required"`

	CargoType     string   `json:"cargo_type,omitempty"`
	IncidentTime  string   `json:"incident_time,omitempty"`
	EstimatedLoss *float64 `json:"estimated_loss,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
}

// DashboardStats are the aggregate counters shown on the dashboard
type DashboardStats struct {
	Total         int `json:"total"`
	Critical      int `json:"critical"`
	Recent        int `json:"recent"` // created within the last 30 days
	ActiveRegions int `json:"active_regions"`
}

// ===========================
// REGION MODELS
// ===========================

// Region is reference data for filtering and map statistics.
// IncidentCount is an eventually-consistent cache recomputed out-of-band.
type Region struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"` // e.g. "Memphis, TN, USA"
	State        string   `json:"state"`
	City         string   `json:"city"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	IsPriority   bool     `json:"is_priority"`
	PriorityRank *int     `json:"priority_rank,omitempty"`

	IncidentCount int    `json:"incident_count"`
	Description   string `json:"description,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ===========================
// COMMENT MODELS
// ===========================

type Comment struct {
	ID              string `json:"id"`
	IncidentID      string `json:"incident_id"`
	UserID          string `json:"user_id"`
	Content         string `json:"content"`
	ParentCommentID string `json:"parent_comment_id,omitempty"`
	IsEdited        bool   `json:"is_edited"`
	IsFlagged       bool   `json:"is_flagged"`
	IsDeleted       bool   `json:"is_deleted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Populated via JOIN for API responses
	AuthorName    string `json:"author_name,omitempty"`
	AuthorCompany string `json:"author_company,omitempty"`
}

type CreateCommentRequest struct {
	Content         string `json:"content" binding:"required"`
	ParentCommentID string `json:"parent_comment_id,omitempty"`
}

// ===========================
// EVIDENCE MODELS
// ===========================

// Evidence is a photo or video attached to an incident. Uploads go through
// Supabase Storage; this service only lists the resulting records.
type Evidence struct {
	ID         string `json:"id"`
	IncidentID string `json:"incident_id"`
	UploadedBy string `json:"uploaded_by"`

	FileType string `json:"file_type"` // image, video
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
	FileSize *int64 `json:"file_size,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Caption  string `json:"caption,omitempty"`

	UploadedAt time.Time `json:"uploaded_at"`
}

// ===========================
// RESOURCE MODELS
// ===========================

// Resource is read-only content: security products, guides, partnerships
type Resource struct {
	ID          string `json:"id"`
	Category    string `json:"category"` // product, educational, partnership, guide, report
	Subcategory string `json:"subcategory,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	CompanyURL  string `json:"company_url,omitempty"`
	Badge       string `json:"badge,omitempty"`
	IconType    string `json:"icon_type,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`

	DisplayOrder int  `json:"display_order"`
	IsActive     bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ===========================
// NOTIFICATION MODELS
// ===========================

type Notification struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	Type    string `json:"type"` // new_incident, comment_reply, mention, system_alert
	Title   string `json:"title"`
	Message string `json:"message"`

	LinkURL        string `json:"link_url,omitempty"`
	LinkIncidentID string `json:"link_incident_id,omitempty"`

	IsRead bool       `json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
