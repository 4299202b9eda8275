package services

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique-index violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// RegisterForWorkshop inserts a registration only while the seat count is
// below capacity. The workshop row is locked FOR UPDATE first, which
// serializes concurrent registrations for the same workshop; under READ
// COMMITTED a bare count-then-insert would let two requests at capacity-1
// both see a free seat. The unique index on (workshop_id, lower(email))
// closes the duplicate race.
func RegisterForWorkshop(db *sqlx.DB, workshopID, name, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	tx, err := db.Beginx()
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	var capacity int
	if err := tx.Get(&capacity, `SELECT capacity FROM workshops WHERE id = $1 FOR UPDATE`, workshopID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound("Workshop not found")
		}
		return "", err
	}
	var registered int
	if err := tx.Get(&registered, `SELECT count(*) FROM workshop_registrations WHERE workshop_id = $1`, workshopID); err != nil {
		return "", err
	}
	if registered >= capacity {
		return "", ErrBadRequest("This workshop is fully booked.")
	}
	id := uuid.NewString()
	if _, err := tx.Exec(`
INSERT INTO workshop_registrations (id, workshop_id, name, email, registered_at)
VALUES ($1,$2,$3,$4,$5)
`, id, workshopID, name, email, time.Now().UTC()); err != nil {
		if IsUniqueViolation(err) {
			return "", ErrBadRequest("You are already registered for this workshop.")
		}
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// RegisterForSession mirrors RegisterForWorkshop; sessions have no capacity,
// only the duplicate guard.
func RegisterForSession(db *sqlx.DB, sessionID, name, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	id := uuid.NewString()
	_, err := db.Exec(`
INSERT INTO session_participants (id, session_id, name, email, registered_at)
VALUES ($1,$2,$3,$4,$5)
`, id, sessionID, name, email, time.Now().UTC())
	if err != nil {
		if IsUniqueViolation(err) {
			return "", ErrBadRequest("You are already registered for this session.")
		}
		return "", err
	}
	return id, nil
}

func CancelWorkshopRegistration(db *sqlx.DB, workshopID, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	result, err := db.Exec(`
DELETE FROM workshop_registrations WHERE workshop_id = $1 AND lower(email) = $2
`, workshopID, email)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound("Registration not found.")
	}
	return nil
}

func CancelSessionRegistration(db *sqlx.DB, sessionID, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	result, err := db.Exec(`
DELETE FROM session_participants WHERE session_id = $1 AND lower(email) = $2
`, sessionID, email)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound("Registration not found.")
	}
	return nil
}
