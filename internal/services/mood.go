package services

import (
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
)

// MoodCooldown is the minimum gap between two mood logs for the same user.
const MoodCooldown = 24 * time.Hour

type MoodStatus struct {
	CanLog         bool `json:"canLog"`
	HoursUntilNext int  `json:"hoursUntilNext"`
}

// MoodStatusAt applies the cooldown rule. The ceiling rounding here is the
// single source of truth for hoursUntilNext; the log and check endpoints both
// go through it so the UI and the backend can never disagree.
func MoodStatusAt(lastLogged *time.Time, now time.Time) MoodStatus {
	if lastLogged == nil {
		return MoodStatus{CanLog: true}
	}
	elapsed := now.Sub(*lastLogged)
	if elapsed >= MoodCooldown {
		return MoodStatus{CanLog: true}
	}
	remaining := MoodCooldown - elapsed
	hours := int(math.Ceil(remaining.Hours()))
	if hours < 1 {
		hours = 1
	}
	return MoodStatus{CanLog: false, HoursUntilNext: hours}
}

func LastMoodLogged(db *sqlx.DB, userID string) (*time.Time, error) {
	var last *time.Time
	err := db.Get(&last, `SELECT last_mood_logged FROM user_profiles WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		// No profile row yet means the user has never logged a mood.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return last, nil
}

// LogMood records mood_today and stamps last_mood_logged in one upsert.
func LogMood(db *sqlx.DB, userID, mood string, now time.Time) error {
	_, err := db.Exec(`
INSERT INTO user_profiles (user_id, mood_today, last_mood_logged, created_at, updated_at)
VALUES ($1,$2,$3,$3,$3)
ON CONFLICT (user_id) DO UPDATE
SET mood_today = EXCLUDED.mood_today,
    last_mood_logged = EXCLUDED.last_mood_logged,
    updated_at = EXCLUDED.updated_at
`, userID, mood, now)
	return err
}
