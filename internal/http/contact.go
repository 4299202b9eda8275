package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"mindhaven-backend-go/internal/models"
	"mindhaven-backend-go/internal/services"

	"github.com/google/uuid"
)

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type ContactMessageDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) CreateContactMessage(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	name := strings.TrimSpace(req.Name)
	email := services.NormalizeEmail(req.Email)
	message := strings.TrimSpace(req.Message)
	if name == "" || email == "" || message == "" {
		WriteError(w, http.StatusBadRequest, "Name, email and message are required")
		return
	}
	_, err := s.DB.Exec(`
INSERT INTO contact_messages (id, name, email, message, created_at)
VALUES ($1,$2,$3,$4,$5)
`, uuid.NewString(), name, email, message, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (s *Server) ListContactMessages(w http.ResponseWriter, r *http.Request) {
	rows := []models.ContactMessage{}
	if err := s.DB.Select(&rows, `
SELECT id, name, email, message, created_at
FROM contact_messages
ORDER BY created_at DESC
`); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]ContactMessageDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, ContactMessageDTO{ID: row.ID, Name: row.Name, Email: row.Email, Message: row.Message, CreatedAt: row.CreatedAt})
	}
	WriteJSON(w, http.StatusOK, map[string][]ContactMessageDTO{"items": items})
}
