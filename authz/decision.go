// Package authz derives the request-scoped access decision from the
// authenticated principal joined against the stored user row, and exposes
// gin middleware that routes on it.
package authz

import "github.com/cargowatch/api/db"

// Decision is the single access-control outcome for a request
type Decision string

const (
	DecisionUnauthenticated Decision = "unauthenticated"
	DecisionUnverified      Decision = "unverified"
	DecisionPendingApproval Decision = "pending_approval"
	DecisionRejected        Decision = "rejected"
	DecisionSuspended       Decision = "suspended"
	DecisionApprovedActive  Decision = "approved_active"
)

// Evaluate maps a user to exactly one decision. The rules are ordered and
// the first match wins; a missing user row is treated as unauthenticated.
// Pure read, no side effects.
func Evaluate(user *db.User) Decision {
	switch {
	case user == nil:
		return DecisionUnauthenticated
	case !user.EmailVerified:
		return DecisionUnverified
	case user.ApprovalStatus == db.ApprovalPending:
		return DecisionPendingApproval
	case user.ApprovalStatus == db.ApprovalRejected:
		return DecisionRejected
	case user.AccountStatus != db.AccountActive:
		return DecisionSuspended
	default:
		return DecisionApprovedActive
	}
}

// StatusPath maps a decision to the frontend page that explains it.
// The auth callback and client-side routing share these destinations.
func StatusPath(d Decision) string {
	switch d {
	case DecisionUnauthenticated:
		return "/login"
	case DecisionUnverified:
		return "/verify-email"
	case DecisionPendingApproval, DecisionRejected:
		return "/pending-approval" // shows the rejection reason when rejected
	case DecisionSuspended:
		return "/account-suspended"
	default:
		return "/dashboard"
	}
}
