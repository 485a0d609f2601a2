package models

import "strings"

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent RoleType = "student"
	RoleAdmin   RoleType = "admin"
)

// ParseRoleType normalizes a role string; ok is false for unknown roles
func ParseRoleType(s string) (RoleType, bool) {
	switch RoleType(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// ApplicationStatus is the review state of an application
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
)

// AllStatuses lists the statuses in display order
var AllStatuses = []ApplicationStatus{StatusPending, StatusApproved, StatusRejected}

// ParseApplicationStatus normalizes a status string; ok is false for unknown values
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	status := ApplicationStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllStatuses {
		if status == known {
			return status, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further status transition is allowed
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransitionTo reports whether moving from s to next is a legal review decision.
// Only pending applications can be decided; decisions are final.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	return s == StatusPending && next.IsTerminal()
}
