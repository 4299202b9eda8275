package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func SetLastLogin(db *sqlx.DB, userID string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE users SET last_login_at = $1 WHERE id = $2`, now, userID)
	return err
}

// EnsureAdminUser seeds the bootstrap admin account from configuration. An
// existing row with the configured email is promoted to admin rather than
// duplicated; the password is only written on first creation.
func EnsureAdminUser(db *sqlx.DB, tokens TokenService, email, password string) error {
	email = NormalizeEmail(email)
	var existingID string
	err := db.Get(&existingID, `SELECT id FROM users WHERE lower(email) = $1`, email)
	if err == nil {
		_, err = db.Exec(`UPDATE users SET role = $1, updated_at = $2 WHERE id = $3`, RoleAdmin, time.Now().UTC(), existingID)
		return err
	}
	if password == "" {
		return ErrBadRequest("ADMIN_PASSWORD is required to create the bootstrap admin")
	}
	hash, err := tokens.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.Exec(`
INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$6)
`, uuid.NewString(), "Administrator", email, hash, RoleAdmin, now)
	return err
}
