package authz

import (
	"testing"

	"github.com/cargowatch/api/db"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		user *db.User
		want Decision
	}{
		{"nil user is unauthenticated", nil, DecisionUnauthenticated},
		{
			"unverified email wins over pending approval",
			&db.User{EmailVerified: false, ApprovalStatus: db.ApprovalPending, AccountStatus: db.AccountActive},
			DecisionUnverified,
		},
		{
			"pending approval",
			&db.User{EmailVerified: true, ApprovalStatus: db.ApprovalPending, AccountStatus: db.AccountActive},
			DecisionPendingApproval,
		},
		{
			"rejected",
			&db.User{EmailVerified: true, ApprovalStatus: db.ApprovalRejected, AccountStatus: db.AccountActive},
			DecisionRejected,
		},
		{
			"approved but suspended",
			&db.User{EmailVerified: true, ApprovalStatus: db.ApprovalApproved, AccountStatus: db.AccountSuspended},
			DecisionSuspended,
		},
		{
			"approved and active",
			&db.User{EmailVerified: true, ApprovalStatus: db.ApprovalApproved, AccountStatus: db.AccountActive},
			DecisionApprovedActive,
		},
		{
			"pending wins over suspended (order sensitivity)",
			&db.User{EmailVerified: true, ApprovalStatus: db.ApprovalPending, AccountStatus: db.AccountSuspended},
			DecisionPendingApproval,
		},
		{
			"rejected wins over suspended (order sensitivity)",
			&db.User{EmailVerified: true, ApprovalStatus: db.ApprovalRejected, AccountStatus: db.AccountSuspended},
			DecisionRejected,
		},
		{
			"unverified wins over rejected (order sensitivity)",
			&db.User{EmailVerified: false, ApprovalStatus: db.ApprovalRejected, AccountStatus: db.AccountActive},
			DecisionUnverified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.user)
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_ApprovedActiveIffAllGatesPass(t *testing.T) {
	// approved_active must hold exactly when verified AND approved AND active
	for _, verified := range []bool{true, false} {
		for _, approval := range []string{db.ApprovalPending, db.ApprovalApproved, db.ApprovalRejected} {
			for _, account := range []string{db.AccountActive, db.AccountSuspended} {
				user := &db.User{EmailVerified: verified, ApprovalStatus: approval, AccountStatus: account}
				got := Evaluate(user) == DecisionApprovedActive
				want := verified && approval == db.ApprovalApproved && account == db.AccountActive
				if got != want {
					t.Errorf("Evaluate(verified=%v approval=%s account=%s) approved=%v, want %v",
						verified, approval, account, got, want)
				}
			}
		}
	}
}

func TestStatusPath(t *testing.T) {
	tests := []struct {
		decision Decision
		want     string
	}{
		{DecisionUnauthenticated, "/login"},
		{DecisionUnverified, "/verify-email"},
		{DecisionPendingApproval, "/pending-approval"},
		{DecisionRejected, "/pending-approval"},
		{DecisionSuspended, "/account-suspended"},
		{DecisionApprovedActive, "/dashboard"},
	}
	for _, tt := range tests {
		if got := StatusPath(tt.decision); got != tt.want {
			t.Errorf("StatusPath(%s) = %s, want %s", tt.decision, got, tt.want)
		}
	}
}
