package services

import (
	"strings"
	"time"
)

const (
	RoleUser      = "user"
	RoleStaff     = "staff"
	RoleCounselor = "counselor"
	RoleAdmin     = "admin"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var validRoles = map[string]bool{
	RoleUser:      true,
	RoleStaff:     true,
	RoleCounselor: true,
	RoleAdmin:     true,
}

var workshopStatuses = map[string]bool{
	StatusPending:  true,
	StatusApproved: true,
	StatusRejected: true,
}

var sessionStatuses = map[string]bool{
	StatusPending:   true,
	StatusApproved:  true,
	StatusRejected:  true,
	StatusCompleted: true,
	StatusCancelled: true,
}

func ValidRole(role string) bool {
	return validRoles[strings.ToLower(strings.TrimSpace(role))]
}

func ValidWorkshopStatus(status string) bool {
	return workshopStatuses[status]
}

func ValidSessionStatus(status string) bool {
	return sessionStatuses[status]
}

// WorkshopStatusAfterEdit: a rejected workshop goes back for review, any
// other status survives the edit (approved stays approved).
func WorkshopStatusAfterEdit(current string) string {
	if current == StatusRejected {
		return StatusPending
	}
	return current
}

// SessionStatusAfterEdit: editing a session that was already reviewed
// (approved or rejected) sends it back for review. Workshops deliberately
// behave differently, see WorkshopStatusAfterEdit.
func SessionStatusAfterEdit(current string) string {
	if current == StatusApproved || current == StatusRejected {
		return StatusPending
	}
	return current
}

// EventDatePassed reports whether the event's calendar day is behind now's.
// An event happening today has not passed.
func EventDatePassed(eventDate, now time.Time) bool {
	y1, m1, d1 := eventDate.UTC().Date()
	y2, m2, d2 := now.UTC().Date()
	if y1 != y2 {
		return y1 < y2
	}
	if m1 != m2 {
		return m1 < m2
	}
	return d1 < d2
}

// RedirectForRole maps a role to the dashboard the frontend lands on after
// login.
func RedirectForRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleCounselor:
		return "/counselor/dashboard"
	case RoleStaff:
		return "/staff/dashboard"
	default:
		return "/user/dashboard"
	}
}
