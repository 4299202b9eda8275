package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"mindhaven-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type SessionUpsertRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	CategoryID  string `json:"categoryId"`
}

type SessionDTO struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Location     string `json:"location"`
	CategoryID   string `json:"categoryId"`
	Status       string `json:"status"`
	Participants int    `json:"participants"`
}

type sessionRow struct {
	ID           string    `db:"id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	EventDate    time.Time `db:"event_date"`
	EventTime    string    `db:"event_time"`
	Location     string    `db:"location"`
	CategoryID   string    `db:"category_id"`
	Status       string    `db:"status"`
	Participants int       `db:"participants"`
}

const sessionSelect = `
SELECT s.id, s.title, s.description, s.event_date, s.event_time, s.location,
       s.category_id, s.status,
       (SELECT count(*) FROM session_participants p WHERE p.session_id = s.id) AS participants
FROM counseling_sessions s
`

func sessionDTO(row sessionRow) SessionDTO {
	return SessionDTO{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description,
		Date:         row.EventDate.Format("2006-01-02"),
		Time:         row.EventTime,
		Location:     row.Location,
		CategoryID:   row.CategoryID,
		Status:       row.Status,
		Participants: row.Participants,
	}
}

func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	rows := []sessionRow{}
	if err := s.DB.Select(&rows, sessionSelect+`ORDER BY s.event_date ASC, s.created_at DESC`); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]SessionDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, sessionDTO(row))
	}
	WriteJSON(w, http.StatusOK, map[string][]SessionDTO{"items": items})
}

func (s *Server) PublicSessions(w http.ResponseWriter, r *http.Request) {
	rows := []sessionRow{}
	if err := s.DB.Select(&rows, sessionSelect+`WHERE s.status = 'approved' ORDER BY s.event_date ASC`); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]SessionDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, sessionDTO(row))
	}
	WriteJSON(w, http.StatusOK, map[string][]SessionDTO{"items": items})
}

func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	row := sessionRow{}
	if err := s.DB.Get(&row, sessionSelect+`WHERE s.id = $1`, sessionID); err != nil {
		WriteError(w, http.StatusNotFound, "Session not found")
		return
	}
	WriteJSON(w, http.StatusOK, sessionDTO(row))
}

func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)
	var req SessionUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	eventDate, err := s.validateSessionRequest(&req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	sessionID := uuid.NewString()
	now := time.Now().UTC()
	_, err = s.DB.Exec(`
INSERT INTO counseling_sessions (id, title, description, event_date, event_time, location, category_id, created_by, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10)
`, sessionID, req.Title, req.Description, eventDate, req.Time, req.Location, req.CategoryID, userID, services.StatusPending, now)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	row := sessionRow{}
	if err := s.DB.Get(&row, sessionSelect+`WHERE s.id = $1`, sessionID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusCreated, sessionDTO(row))
}

func (s *Server) UpdateSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	var req SessionUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	current := struct {
		EventDate time.Time `db:"event_date"`
		Status    string    `db:"status"`
	}{}
	if err := s.DB.Get(&current, `SELECT event_date, status FROM counseling_sessions WHERE id = $1`, sessionID); err != nil {
		WriteError(w, http.StatusNotFound, "Session not found")
		return
	}
	if services.EventDatePassed(current.EventDate, time.Now()) {
		WriteError(w, http.StatusBadRequest, "Past sessions cannot be edited")
		return
	}
	eventDate, err := s.validateSessionRequest(&req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := services.SessionStatusAfterEdit(current.Status)
	_, err = s.DB.Exec(`
UPDATE counseling_sessions
SET title = $2, description = $3, event_date = $4, event_time = $5, location = $6,
    category_id = $7, status = $8, updated_at = $9
WHERE id = $1
`, sessionID, req.Title, req.Description, eventDate, req.Time, req.Location, req.CategoryID, status, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	row := sessionRow{}
	if err := s.DB.Get(&row, sessionSelect+`WHERE s.id = $1`, sessionID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, sessionDTO(row))
}

func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	current := struct {
		EventDate time.Time `db:"event_date"`
	}{}
	if err := s.DB.Get(&current, `SELECT event_date FROM counseling_sessions WHERE id = $1`, sessionID); err != nil {
		WriteError(w, http.StatusNotFound, "Session not found")
		return
	}
	if services.EventDatePassed(current.EventDate, time.Now()) {
		WriteError(w, http.StatusBadRequest, "Past sessions cannot be deleted")
		return
	}
	// Participants first; the schema declares no cascade here.
	_, _ = s.DB.Exec(`DELETE FROM session_participants WHERE session_id = $1`, sessionID)
	_, _ = s.DB.Exec(`DELETE FROM counseling_sessions WHERE id = $1`, sessionID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) SetSessionStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if !services.ValidSessionStatus(status) {
		WriteError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	result, err := s.DB.Exec(`UPDATE counseling_sessions SET status = $2, updated_at = $3 WHERE id = $1`, sessionID, status, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		WriteError(w, http.StatusNotFound, "Session not found")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"id": sessionID, "status": status})
}

func (s *Server) RegisterForSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	var req RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	name := strings.TrimSpace(req.Name)
	email := services.NormalizeEmail(req.Email)
	if name == "" || email == "" {
		WriteError(w, http.StatusBadRequest, "Name and email are required")
		return
	}
	current := struct {
		EventDate time.Time `db:"event_date"`
		Status    string    `db:"status"`
	}{}
	if err := s.DB.Get(&current, `SELECT event_date, status FROM counseling_sessions WHERE id = $1`, sessionID); err != nil {
		WriteError(w, http.StatusNotFound, "Session not found")
		return
	}
	if current.Status != services.StatusApproved || services.EventDatePassed(current.EventDate, time.Now()) {
		WriteError(w, http.StatusNotFound, "Session not found")
		return
	}
	participantID, err := services.RegisterForSession(s.DB, sessionID, name, email)
	if err != nil {
		if serr, ok := err.(services.ServiceError); ok {
			WriteError(w, serr.Status, serr.Message)
			return
		}
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"participantId": participantID})
}

func (s *Server) CancelSessionRegistration(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	var req RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	email := services.NormalizeEmail(req.Email)
	if email == "" {
		WriteError(w, http.StatusBadRequest, "Email is required")
		return
	}
	current := struct {
		EventDate time.Time `db:"event_date"`
	}{}
	if err := s.DB.Get(&current, `SELECT event_date FROM counseling_sessions WHERE id = $1`, sessionID); err != nil {
		WriteError(w, http.StatusNotFound, "Session not found")
		return
	}
	if services.EventDatePassed(current.EventDate, time.Now()) {
		WriteError(w, http.StatusBadRequest, "The session date has already passed")
		return
	}
	if err := services.CancelSessionRegistration(s.DB, sessionID, email); err != nil {
		if serr, ok := err.(services.ServiceError); ok {
			WriteError(w, serr.Status, serr.Message)
			return
		}
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveSessionParticipant is the counselor/admin force-cancel; unlike the
// self-service cancel it also works after the session date.
func (s *Server) RemoveSessionParticipant(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	email := services.NormalizeEmail(chi.URLParam(r, "email"))
	var exists bool
	_ = s.DB.Get(&exists, `SELECT EXISTS(SELECT 1 FROM counseling_sessions WHERE id = $1)`, sessionID)
	if !exists {
		WriteError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err := services.CancelSessionRegistration(s.DB, sessionID, email); err != nil {
		if serr, ok := err.(services.ServiceError); ok {
			WriteError(w, serr.Status, serr.Message)
			return
		}
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) SessionParticipants(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	var exists bool
	_ = s.DB.Get(&exists, `SELECT EXISTS(SELECT 1 FROM counseling_sessions WHERE id = $1)`, sessionID)
	if !exists {
		WriteError(w, http.StatusNotFound, "Session not found")
		return
	}
	rows := []struct {
		ID           string    `db:"id"`
		Name         string    `db:"name"`
		Email        string    `db:"email"`
		RegisteredAt time.Time `db:"registered_at"`
	}{}
	if err := s.DB.Select(&rows, `
SELECT id, name, email, registered_at
FROM session_participants
WHERE session_id = $1
ORDER BY registered_at ASC
`, sessionID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]ParticipantDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, ParticipantDTO{ID: row.ID, Name: row.Name, Email: row.Email, RegisteredAt: row.RegisteredAt})
	}
	WriteJSON(w, http.StatusOK, map[string][]ParticipantDTO{"items": items})
}

func (s *Server) validateSessionRequest(req *SessionUpsertRequest) (time.Time, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Time = strings.TrimSpace(req.Time)
	req.Location = strings.TrimSpace(req.Location)
	req.CategoryID = strings.TrimSpace(req.CategoryID)
	if req.Title == "" || req.Description == "" || req.Time == "" || req.Location == "" || req.CategoryID == "" {
		return time.Time{}, services.ErrBadRequest("Title, description, date, time, location and category are required")
	}
	eventDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		return time.Time{}, services.ErrBadRequest("Date must be in YYYY-MM-DD format")
	}
	var categoryExists bool
	_ = s.DB.Get(&categoryExists, `SELECT EXISTS(SELECT 1 FROM workshop_categories WHERE id = $1)`, req.CategoryID)
	if !categoryExists {
		return time.Time{}, services.ErrBadRequest("The selected category does not exist")
	}
	return eventDate, nil
}
