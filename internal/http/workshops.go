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

type WorkshopUpsertRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Location    string  `json:"location"`
	Capacity    int     `json:"capacity"`
	CategoryID  string  `json:"categoryId"`
	ImageID     *string `json:"imageAssetId"`
}

type WorkshopDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Location    string  `json:"location"`
	Capacity    int     `json:"capacity"`
	Registered  int     `json:"registered"`
	CategoryID  string  `json:"categoryId"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	Status      string  `json:"status"`
}

type RegistrationRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type ParticipantDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registeredAt"`
}

type workshopRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	EventDate   time.Time `db:"event_date"`
	EventTime   string    `db:"event_time"`
	Location    string    `db:"location"`
	Capacity    int       `db:"capacity"`
	CategoryID  string    `db:"category_id"`
	ImageID     *string   `db:"image_media_id"`
	Status      string    `db:"status"`
	Registered  int       `db:"registered"`
}

const workshopSelect = `
SELECT w.id, w.title, w.description, w.event_date, w.event_time, w.location,
       w.capacity, w.category_id, w.image_media_id, w.status,
       (SELECT count(*) FROM workshop_registrations r WHERE r.workshop_id = w.id) AS registered
FROM workshops w
`

func workshopDTO(row workshopRow) WorkshopDTO {
	var imageURL *string
	if row.ImageID != nil {
		url := services.BuildAssetURL(*row.ImageID)
		imageURL = &url
	}
	return WorkshopDTO{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Date:        row.EventDate.Format("2006-01-02"),
		Time:        row.EventTime,
		Location:    row.Location,
		Capacity:    row.Capacity,
		Registered:  row.Registered,
		CategoryID:  row.CategoryID,
		ImageURL:    imageURL,
		Status:      row.Status,
	}
}

func (s *Server) ListWorkshops(w http.ResponseWriter, r *http.Request) {
	rows := []workshopRow{}
	if err := s.DB.Select(&rows, workshopSelect+`ORDER BY w.event_date ASC, w.created_at DESC`); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]WorkshopDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, workshopDTO(row))
	}
	WriteJSON(w, http.StatusOK, map[string][]WorkshopDTO{"items": items})
}

func (s *Server) PublicWorkshops(w http.ResponseWriter, r *http.Request) {
	rows := []workshopRow{}
	if err := s.DB.Select(&rows, workshopSelect+`WHERE w.status = 'approved' ORDER BY w.event_date ASC`); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]WorkshopDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, workshopDTO(row))
	}
	WriteJSON(w, http.StatusOK, map[string][]WorkshopDTO{"items": items})
}

func (s *Server) GetWorkshop(w http.ResponseWriter, r *http.Request) {
	workshopID := chi.URLParam(r, "workshopId")
	row := workshopRow{}
	if err := s.DB.Get(&row, workshopSelect+`WHERE w.id = $1`, workshopID); err != nil {
		WriteError(w, http.StatusNotFound, "Workshop not found")
		return
	}
	WriteJSON(w, http.StatusOK, workshopDTO(row))
}

func (s *Server) CreateWorkshop(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)
	var req WorkshopUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	eventDate, err := s.validateWorkshopRequest(&req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	workshopID := uuid.NewString()
	now := time.Now().UTC()
	_, err = s.DB.Exec(`
INSERT INTO workshops (id, title, description, event_date, event_time, location, capacity, category_id, image_media_id, created_by, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12)
`, workshopID, req.Title, req.Description, eventDate, req.Time, req.Location, req.Capacity, req.CategoryID, req.ImageID, userID, services.StatusPending, now)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	row := workshopRow{}
	if err := s.DB.Get(&row, workshopSelect+`WHERE w.id = $1`, workshopID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusCreated, workshopDTO(row))
}

func (s *Server) UpdateWorkshop(w http.ResponseWriter, r *http.Request) {
	workshopID := chi.URLParam(r, "workshopId")
	var req WorkshopUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	current := struct {
		EventDate time.Time `db:"event_date"`
		Status    string    `db:"status"`
	}{}
	if err := s.DB.Get(&current, `SELECT event_date, status FROM workshops WHERE id = $1`, workshopID); err != nil {
		WriteError(w, http.StatusNotFound, "Workshop not found")
		return
	}
	if services.EventDatePassed(current.EventDate, time.Now()) {
		WriteError(w, http.StatusBadRequest, "Past workshops cannot be edited")
		return
	}
	eventDate, err := s.validateWorkshopRequest(&req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := services.WorkshopStatusAfterEdit(current.Status)
	_, err = s.DB.Exec(`
UPDATE workshops
SET title = $2, description = $3, event_date = $4, event_time = $5, location = $6,
    capacity = $7, category_id = $8, image_media_id = $9, status = $10, updated_at = $11
WHERE id = $1
`, workshopID, req.Title, req.Description, eventDate, req.Time, req.Location, req.Capacity, req.CategoryID, req.ImageID, status, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	row := workshopRow{}
	if err := s.DB.Get(&row, workshopSelect+`WHERE w.id = $1`, workshopID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, workshopDTO(row))
}

func (s *Server) DeleteWorkshop(w http.ResponseWriter, r *http.Request) {
	workshopID := chi.URLParam(r, "workshopId")
	current := struct {
		EventDate time.Time `db:"event_date"`
		ImageID   *string   `db:"image_media_id"`
	}{}
	if err := s.DB.Get(&current, `SELECT event_date, image_media_id FROM workshops WHERE id = $1`, workshopID); err != nil {
		WriteError(w, http.StatusNotFound, "Workshop not found")
		return
	}
	if services.EventDatePassed(current.EventDate, time.Now()) {
		WriteError(w, http.StatusBadRequest, "Past workshops cannot be deleted")
		return
	}
	_, _ = s.DB.Exec(`DELETE FROM workshop_registrations WHERE workshop_id = $1`, workshopID)
	_, _ = s.DB.Exec(`DELETE FROM workshops WHERE id = $1`, workshopID)
	if current.ImageID != nil && *current.ImageID != "" {
		_ = services.DeleteAsset(s.DB, s.Config.MediaStoragePath, *current.ImageID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) SetWorkshopStatus(w http.ResponseWriter, r *http.Request) {
	workshopID := chi.URLParam(r, "workshopId")
	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if !services.ValidWorkshopStatus(status) {
		WriteError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	result, err := s.DB.Exec(`UPDATE workshops SET status = $2, updated_at = $3 WHERE id = $1`, workshopID, status, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		WriteError(w, http.StatusNotFound, "Workshop not found")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"id": workshopID, "status": status})
}

func (s *Server) RegisterForWorkshop(w http.ResponseWriter, r *http.Request) {
	workshopID := chi.URLParam(r, "workshopId")
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
	if err := s.DB.Get(&current, `SELECT event_date, status FROM workshops WHERE id = $1`, workshopID); err != nil {
		WriteError(w, http.StatusNotFound, "Workshop not found")
		return
	}
	// Unapproved or past workshops are invisible to registrants.
	if current.Status != services.StatusApproved || services.EventDatePassed(current.EventDate, time.Now()) {
		WriteError(w, http.StatusNotFound, "Workshop not found")
		return
	}
	registrationID, err := services.RegisterForWorkshop(s.DB, workshopID, name, email)
	if err != nil {
		if serr, ok := err.(services.ServiceError); ok {
			WriteError(w, serr.Status, serr.Message)
			return
		}
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"registrationId": registrationID})
}

func (s *Server) CancelWorkshopRegistration(w http.ResponseWriter, r *http.Request) {
	workshopID := chi.URLParam(r, "workshopId")
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
	if err := s.DB.Get(&current, `SELECT event_date FROM workshops WHERE id = $1`, workshopID); err != nil {
		WriteError(w, http.StatusNotFound, "Workshop not found")
		return
	}
	if services.EventDatePassed(current.EventDate, time.Now()) {
		WriteError(w, http.StatusBadRequest, "The workshop date has already passed")
		return
	}
	if err := services.CancelWorkshopRegistration(s.DB, workshopID, email); err != nil {
		if serr, ok := err.(services.ServiceError); ok {
			WriteError(w, serr.Status, serr.Message)
			return
		}
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadWorkshopImage stores a banner image and returns the asset id to put
// into imageAssetId when creating or editing a workshop.
func (s *Server) UploadWorkshopImage(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)
	if err := r.ParseMultipartForm(20 << 20); err != nil {
		WriteError(w, http.StatusBadRequest, "The uploaded file is empty.")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "The uploaded file is empty.")
		return
	}
	defer file.Close()
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		WriteError(w, http.StatusBadRequest, "Only image uploads are supported")
		return
	}
	assetID, url, err := services.SaveMediaAsset(s.DB, s.Config.MediaStoragePath, services.BucketWorkshops, contentType, header.Filename, userID, file)
	if err != nil {
		if serr, ok := err.(services.ServiceError); ok {
			WriteError(w, serr.Status, serr.Message)
			return
		}
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"assetId": assetID, "url": url})
}

func (s *Server) WorkshopParticipants(w http.ResponseWriter, r *http.Request) {
	workshopID := chi.URLParam(r, "workshopId")
	var exists bool
	_ = s.DB.Get(&exists, `SELECT EXISTS(SELECT 1 FROM workshops WHERE id = $1)`, workshopID)
	if !exists {
		WriteError(w, http.StatusNotFound, "Workshop not found")
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
FROM workshop_registrations
WHERE workshop_id = $1
ORDER BY registered_at ASC
`, workshopID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]ParticipantDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, ParticipantDTO{ID: row.ID, Name: row.Name, Email: row.Email, RegisteredAt: row.RegisteredAt})
	}
	WriteJSON(w, http.StatusOK, map[string][]ParticipantDTO{"items": items})
}

func (s *Server) validateWorkshopRequest(req *WorkshopUpsertRequest) (time.Time, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Time = strings.TrimSpace(req.Time)
	req.Location = strings.TrimSpace(req.Location)
	req.CategoryID = strings.TrimSpace(req.CategoryID)
	if req.Title == "" || req.Description == "" || req.Time == "" || req.Location == "" || req.CategoryID == "" {
		return time.Time{}, services.ErrBadRequest("Title, description, date, time, location, capacity and category are required")
	}
	if req.Capacity < 1 {
		return time.Time{}, services.ErrBadRequest("Capacity must be at least 1")
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
