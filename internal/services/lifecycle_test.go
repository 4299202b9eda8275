package services

import (
	"testing"
	"time"
)

func TestWorkshopStatusAfterEdit(t *testing.T) {
	cases := []struct {
		current  string
		expected string
	}{
		{StatusPending, StatusPending},
		{StatusApproved, StatusApproved},
		{StatusRejected, StatusPending},
	}
	for _, tc := range cases {
		if got := WorkshopStatusAfterEdit(tc.current); got != tc.expected {
			t.Errorf("WorkshopStatusAfterEdit(%q) = %q, want %q", tc.current, got, tc.expected)
		}
	}
}

func TestSessionStatusAfterEdit(t *testing.T) {
	cases := []struct {
		current  string
		expected string
	}{
		{StatusPending, StatusPending},
		{StatusApproved, StatusPending},
		{StatusRejected, StatusPending},
		{StatusCompleted, StatusCompleted},
		{StatusCancelled, StatusCancelled},
	}
	for _, tc := range cases {
		if got := SessionStatusAfterEdit(tc.current); got != tc.expected {
			t.Errorf("SessionStatusAfterEdit(%q) = %q, want %q", tc.current, got, tc.expected)
		}
	}
}

func TestEventDatePassed(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	cases := []struct {
		name      string
		eventDate time.Time
		passed    bool
	}{
		{"yesterday", time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), true},
		{"today", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), false},
		{"tomorrow", time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), false},
		{"last year", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EventDatePassed(tc.eventDate, now); got != tc.passed {
				t.Errorf("EventDatePassed(%v, %v) = %v, want %v", tc.eventDate, now, got, tc.passed)
			}
		})
	}
}

func TestRedirectForRole(t *testing.T) {
	cases := map[string]string{
		RoleAdmin:     "/admin/dashboard",
		RoleCounselor: "/counselor/dashboard",
		RoleStaff:     "/staff/dashboard",
		RoleUser:      "/user/dashboard",
		"unknown":     "/user/dashboard",
	}
	for role, expected := range cases {
		if got := RedirectForRole(role); got != expected {
			t.Errorf("RedirectForRole(%q) = %q, want %q", role, got, expected)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleUser, RoleStaff, RoleCounselor, RoleAdmin} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false, want true", role)
		}
	}
	for _, role := range []string{"", "superuser", "ADMIN "} {
		if ValidRole(role) {
			t.Errorf("ValidRole(%q) = true, want false", role)
		}
	}
}

func TestValidStatuses(t *testing.T) {
	if !ValidWorkshopStatus(StatusApproved) || ValidWorkshopStatus(StatusCompleted) {
		t.Error("workshop statuses should accept approved and reject completed")
	}
	if !ValidSessionStatus(StatusCompleted) || ValidSessionStatus("archived") {
		t.Error("session statuses should accept completed and reject unknown values")
	}
}
