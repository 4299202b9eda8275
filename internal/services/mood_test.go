package services

import (
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

func TestMoodStatusAtFirstLog(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	status := MoodStatusAt(nil, now)
	if !status.CanLog {
		t.Fatal("first log should be allowed")
	}
	if status.HoursUntilNext != 0 {
		t.Errorf("HoursUntilNext = %d, want 0", status.HoursUntilNext)
	}
}

func TestMoodStatusAtWithinCooldown(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		since time.Duration
		hours int
	}{
		{"just logged", 0, 24},
		{"one hour ago", time.Hour, 23},
		{"partial hour rounds up", 23*time.Hour + 30*time.Minute, 1},
		{"just under the limit", 24*time.Hour - time.Second, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			last := now.Add(-tc.since)
			status := MoodStatusAt(&last, now)
			if status.CanLog {
				t.Fatal("log within cooldown should be blocked")
			}
			if status.HoursUntilNext != tc.hours {
				t.Errorf("HoursUntilNext = %d, want %d", status.HoursUntilNext, tc.hours)
			}
		})
	}
}

// A failed read must surface as an error, not as "never logged"; otherwise
// the cooldown is bypassed whenever the database is unreachable.
func TestLastMoodLoggedPropagatesQueryErrors(t *testing.T) {
	db, err := sqlx.Open("pgx", "postgres://127.0.0.1:1/unreachable?connect_timeout=1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := LastMoodLogged(db, "user-1"); err == nil {
		t.Fatal("query failure was reported as never logged")
	}
}

func TestMoodStatusAtAfterCooldown(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	for _, since := range []time.Duration{MoodCooldown, 25 * time.Hour, 72 * time.Hour} {
		last := now.Add(-since)
		status := MoodStatusAt(&last, now)
		if !status.CanLog {
			t.Errorf("log after %v should be allowed", since)
		}
		if status.HoursUntilNext != 0 {
			t.Errorf("HoursUntilNext = %d after %v, want 0", status.HoursUntilNext, since)
		}
	}
}
