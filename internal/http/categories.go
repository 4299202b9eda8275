package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"mindhaven-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CategoryUpsertRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type CategoryDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	rows := []struct {
		ID          string    `db:"id"`
		Title       string    `db:"title"`
		Description *string   `db:"description"`
		CreatedAt   time.Time `db:"created_at"`
	}{}
	if err := s.DB.Select(&rows, `SELECT id, title, description, created_at FROM workshop_categories ORDER BY title ASC`); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, CategoryDTO{ID: row.ID, Title: row.Title, Description: row.Description, CreatedAt: row.CreatedAt})
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)
	var req CategoryUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	title, err := services.NormalizeRequired(req.Title, "Category title is required")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	categoryID := uuid.NewString()
	now := time.Now().UTC()
	_, err = s.DB.Exec(`
INSERT INTO workshop_categories (id, title, description, created_by, created_at)
VALUES ($1,$2,$3,$4,$5)
`, categoryID, title, req.Description, userID, now)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusCreated, CategoryDTO{ID: categoryID, Title: title, Description: req.Description, CreatedAt: now})
}

func (s *Server) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryId")
	var req CategoryUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	title, err := services.NormalizeRequired(req.Title, "Category title is required")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.DB.Exec(`
UPDATE workshop_categories SET title = $2, description = $3 WHERE id = $1
`, categoryID, title, req.Description)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		WriteError(w, http.StatusNotFound, "Category not found")
		return
	}
	row := struct {
		ID          string    `db:"id"`
		Title       string    `db:"title"`
		Description *string   `db:"description"`
		CreatedAt   time.Time `db:"created_at"`
	}{}
	if err := s.DB.Get(&row, `SELECT id, title, description, created_at FROM workshop_categories WHERE id = $1`, categoryID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, CategoryDTO{ID: row.ID, Title: row.Title, Description: row.Description, CreatedAt: row.CreatedAt})
}

func (s *Server) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryId")
	var exists bool
	_ = s.DB.Get(&exists, `SELECT EXISTS(SELECT 1 FROM workshop_categories WHERE id = $1)`, categoryID)
	if !exists {
		WriteError(w, http.StatusNotFound, "Category not found")
		return
	}
	var inUse bool
	_ = s.DB.Get(&inUse, `
SELECT EXISTS(SELECT 1 FROM workshops WHERE category_id = $1)
    OR EXISTS(SELECT 1 FROM counseling_sessions WHERE category_id = $1)
`, categoryID)
	if inUse {
		WriteError(w, http.StatusBadRequest, "This category is still referenced by workshops or sessions")
		return
	}
	_, _ = s.DB.Exec(`DELETE FROM workshop_categories WHERE id = $1`, categoryID)
	w.WriteHeader(http.StatusNoContent)
}
