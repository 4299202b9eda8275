package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mindhaven-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AdminUserResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	Specialization *string    `json:"specialization,omitempty"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
}

type PagedUsersResponse struct {
	Items    []AdminUserResponse `json:"items"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"pageSize"`
}

type AdminUserCreateRequest struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	Role           string  `json:"role"`
	Specialization *string `json:"specialization"`
}

type AdminUserUpdateRequest struct {
	Name           string  `json:"name"`
	Role           string  `json:"role"`
	Specialization *string `json:"specialization"`
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := parseIntParam(r.URL.Query().Get("page"), 1)
	pageSize := parseIntParam(r.URL.Query().Get("pageSize"), 10)
	if pageSize > 100 {
		pageSize = 100
	}
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	args := []interface{}{}
	where := ""
	if search != "" {
		where = "WHERE lower(email) LIKE $1 OR lower(name) LIKE $1"
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	var total int
	if err := s.DB.Get(&total, "SELECT count(*) FROM users "+where, args...); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	offset := (page - 1) * pageSize
	query := `
SELECT id, name, email, role, specialization, created_at, last_login_at
FROM users
` + where + `
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`
	args = append(args, pageSize, offset)
	query = fmt.Sprintf(query, len(args)-1, len(args))
	rows := []struct {
		ID             string     `db:"id"`
		Name           string     `db:"name"`
		Email          string     `db:"email"`
		Role           string     `db:"role"`
		Specialization *string    `db:"specialization"`
		CreatedAt      *time.Time `db:"created_at"`
		LastLogin      *time.Time `db:"last_login_at"`
	}{}
	if err := s.DB.Select(&rows, query, args...); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]AdminUserResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, AdminUserResponse{
			ID:             row.ID,
			Name:           row.Name,
			Email:          row.Email,
			Role:           row.Role,
			Specialization: row.Specialization,
			CreatedAt:      row.CreatedAt,
			LastLoginAt:    row.LastLogin,
		})
	}
	WriteJSON(w, http.StatusOK, PagedUsersResponse{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req AdminUserCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	name := strings.TrimSpace(req.Name)
	email := services.NormalizeEmail(req.Email)
	if name == "" || email == "" || strings.TrimSpace(req.Password) == "" {
		WriteError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = services.RoleUser
	}
	if !services.ValidRole(role) {
		WriteError(w, http.StatusBadRequest, "Invalid role")
		return
	}
	hash, err := s.Tokens.HashPassword(req.Password)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	// Specialization only applies to counselors.
	specialization := req.Specialization
	if role != services.RoleCounselor {
		specialization = nil
	}
	userID := uuid.NewString()
	now := time.Now().UTC()
	_, err = s.DB.Exec(`
INSERT INTO users (id, name, email, password_hash, role, specialization, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
`, userID, name, email, hash, role, specialization, now)
	if err != nil {
		if services.IsUniqueViolation(err) {
			WriteError(w, http.StatusBadRequest, "User already exists")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	resp, err := s.buildAdminUser(userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusCreated, resp)
}

func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	var req AdminUserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if !services.ValidRole(role) {
		WriteError(w, http.StatusBadRequest, "Invalid role")
		return
	}
	var existing string
	if err := s.DB.Get(&existing, `SELECT id FROM users WHERE id = $1`, userID); err != nil {
		WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	specialization := req.Specialization
	if role != services.RoleCounselor {
		specialization = nil
	}
	_, err := s.DB.Exec(`
UPDATE users SET name = $2, role = $3, specialization = $4, updated_at = $5 WHERE id = $1
`, userID, name, role, specialization, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	resp, err := s.buildAdminUser(userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	row := struct {
		Email string `db:"email"`
		Role  string `db:"role"`
	}{}
	if err := s.DB.Get(&row, `SELECT email, role FROM users WHERE id = $1`, userID); err != nil {
		WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	if row.Role == services.RoleAdmin || services.NormalizeEmail(row.Email) == s.Config.AdminEmail {
		WriteError(w, http.StatusBadRequest, "Admin accounts cannot be deleted")
		return
	}
	var avatarID *string
	_ = s.DB.Get(&avatarID, `SELECT avatar_media_id FROM user_profiles WHERE user_id = $1`, userID)
	if avatarID != nil && *avatarID != "" {
		_ = services.DeleteAsset(s.DB, s.Config.MediaStoragePath, *avatarID)
	}
	_, _ = s.DB.Exec(`DELETE FROM users WHERE id = $1`, userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) buildAdminUser(userID string) (AdminUserResponse, error) {
	row := struct {
		ID             string     `db:"id"`
		Name           string     `db:"name"`
		Email          string     `db:"email"`
		Role           string     `db:"role"`
		Specialization *string    `db:"specialization"`
		CreatedAt      *time.Time `db:"created_at"`
		LastLogin      *time.Time `db:"last_login_at"`
	}{}
	if err := s.DB.Get(&row, `
SELECT id, name, email, role, specialization, created_at, last_login_at
FROM users
WHERE id = $1
`, userID); err != nil {
		return AdminUserResponse{}, err
	}
	return AdminUserResponse{
		ID:             row.ID,
		Name:           row.Name,
		Email:          row.Email,
		Role:           row.Role,
		Specialization: row.Specialization,
		CreatedAt:      row.CreatedAt,
		LastLoginAt:    row.LastLogin,
	}, nil
}

func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value < 1 {
		return fallback
	}
	return value
}
