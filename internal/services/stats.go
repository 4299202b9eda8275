package services

import (
	"time"

	"github.com/jmoiron/sqlx"
)

type DashboardStats struct {
	WorkshopsTotal     int            `json:"workshopsTotal"`
	WorkshopsByStatus  map[string]int `json:"workshopsByStatus"`
	SessionsTotal      int            `json:"sessionsTotal"`
	SessionsByStatus   map[string]int `json:"sessionsByStatus"`
	RegistrationsTotal int            `json:"registrationsTotal"`
	ParticipantsTotal  int            `json:"participantsTotal"`
	ResourcesByStatus  map[string]int `json:"resourcesByStatus"`
	UpcomingWorkshops  int            `json:"upcomingWorkshops"`
	UpcomingSessions   int            `json:"upcomingSessions"`
	ContactMessages    int            `json:"contactMessages"`
}

func CollectDashboardStats(db *sqlx.DB, now time.Time) (DashboardStats, error) {
	stats := DashboardStats{
		WorkshopsByStatus: map[string]int{},
		SessionsByStatus:  map[string]int{},
		ResourcesByStatus: map[string]int{},
	}
	type statusCount struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}

	rows := []statusCount{}
	if err := db.Select(&rows, `SELECT status, count(*) AS count FROM workshops GROUP BY status`); err != nil {
		return stats, err
	}
	for _, row := range rows {
		stats.WorkshopsByStatus[row.Status] = row.Count
		stats.WorkshopsTotal += row.Count
	}

	rows = rows[:0]
	if err := db.Select(&rows, `SELECT status, count(*) AS count FROM counseling_sessions GROUP BY status`); err != nil {
		return stats, err
	}
	for _, row := range rows {
		stats.SessionsByStatus[row.Status] = row.Count
		stats.SessionsTotal += row.Count
	}

	rows = rows[:0]
	if err := db.Select(&rows, `SELECT status, count(*) AS count FROM cbt_resources GROUP BY status`); err != nil {
		return stats, err
	}
	for _, row := range rows {
		stats.ResourcesByStatus[row.Status] = row.Count
	}

	today := now.UTC().Truncate(24 * time.Hour)
	if err := db.Get(&stats.RegistrationsTotal, `SELECT count(*) FROM workshop_registrations`); err != nil {
		return stats, err
	}
	if err := db.Get(&stats.ParticipantsTotal, `SELECT count(*) FROM session_participants`); err != nil {
		return stats, err
	}
	if err := db.Get(&stats.UpcomingWorkshops, `SELECT count(*) FROM workshops WHERE status = 'approved' AND event_date >= $1`, today); err != nil {
		return stats, err
	}
	if err := db.Get(&stats.UpcomingSessions, `SELECT count(*) FROM counseling_sessions WHERE status = 'approved' AND event_date >= $1`, today); err != nil {
		return stats, err
	}
	if err := db.Get(&stats.ContactMessages, `SELECT count(*) FROM contact_messages`); err != nil {
		return stats, err
	}
	return stats, nil
}
