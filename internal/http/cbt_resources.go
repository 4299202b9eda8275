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

type ResourceDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Type        string    `json:"type"`
	FileURL     *string   `json:"fileUrl,omitempty"`
	LinkURL     *string   `json:"linkUrl,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ResourceUpdateRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	LinkURL     *string `json:"linkUrl"`
}

type resourceRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	Type        string    `db:"type"`
	FileMediaID *string   `db:"file_media_id"`
	LinkURL     *string   `db:"link_url"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

func resourceDTO(row resourceRow) ResourceDTO {
	var fileURL *string
	if row.FileMediaID != nil {
		url := services.BuildAssetURL(*row.FileMediaID)
		fileURL = &url
	}
	return ResourceDTO{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Type:        row.Type,
		FileURL:     fileURL,
		LinkURL:     row.LinkURL,
		Status:      row.Status,
		CreatedAt:   row.CreatedAt,
	}
}

// resourceTypeFor derives the resource type from the upload's content type.
func resourceTypeFor(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.EqualFold(contentType, "application/pdf"):
		return "pdf"
	default:
		return ""
	}
}

// UploadResource takes either a multipart file (video/pdf/image) or a linkUrl
// form field for link-type resources. Metadata always starts out pending.
func (s *Server) UploadResource(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		WriteError(w, http.StatusBadRequest, "Title is required")
		return
	}
	var description *string
	if value := strings.TrimSpace(r.FormValue("description")); value != "" {
		description = &value
	}

	resourceID := uuid.NewString()
	now := time.Now().UTC()

	linkURL := strings.TrimSpace(r.FormValue("linkUrl"))
	if linkURL != "" {
		_, err := s.DB.Exec(`
INSERT INTO cbt_resources (id, title, description, type, link_url, status, created_by, created_at, updated_at)
VALUES ($1,$2,$3,'link',$4,$5,$6,$7,$7)
`, resourceID, title, description, linkURL, services.StatusPending, userID, now)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		s.respondResource(w, http.StatusCreated, resourceID)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "A file or a linkUrl is required")
		return
	}
	defer file.Close()
	contentType := header.Header.Get("Content-Type")
	resourceType := resourceTypeFor(contentType)
	if resourceType == "" {
		WriteError(w, http.StatusBadRequest, "Only video, PDF and image uploads are supported")
		return
	}
	assetID, _, err := services.SaveMediaAsset(s.DB, s.Config.MediaStoragePath, services.BucketResources, contentType, header.Filename, userID, file)
	if err != nil {
		if serr, ok := err.(services.ServiceError); ok {
			WriteError(w, serr.Status, serr.Message)
			return
		}
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	_, err = s.DB.Exec(`
INSERT INTO cbt_resources (id, title, description, type, file_media_id, status, created_by, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)
`, resourceID, title, description, resourceType, assetID, services.StatusPending, userID, now)
	if err != nil {
		_ = services.DeleteAsset(s.DB, s.Config.MediaStoragePath, assetID)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.respondResource(w, http.StatusCreated, resourceID)
}

func (s *Server) ListResources(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)
	canManage := strings.EqualFold(CurrentRole(r), services.RoleAdmin)
	rows := []resourceRow{}
	query := `
SELECT id, title, description, type, file_media_id, link_url, status, created_at
FROM cbt_resources
`
	args := []interface{}{}
	if !canManage {
		query += "WHERE created_by = $1\n"
		args = append(args, userID)
	}
	query += "ORDER BY created_at DESC"
	if err := s.DB.Select(&rows, query, args...); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]ResourceDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, resourceDTO(row))
	}
	WriteJSON(w, http.StatusOK, map[string][]ResourceDTO{"items": items})
}

func (s *Server) PublicResources(w http.ResponseWriter, r *http.Request) {
	rows := []resourceRow{}
	if err := s.DB.Select(&rows, `
SELECT id, title, description, type, file_media_id, link_url, status, created_at
FROM cbt_resources
WHERE status = 'approved'
ORDER BY created_at DESC
`); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]ResourceDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, resourceDTO(row))
	}
	WriteJSON(w, http.StatusOK, map[string][]ResourceDTO{"items": items})
}

func (s *Server) UpdateResource(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)
	resourceID := chi.URLParam(r, "resourceId")
	var req ResourceUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	title, err := services.NormalizeRequired(req.Title, "Title is required")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	row := struct {
		CreatedBy *string `db:"created_by"`
		Type      string  `db:"type"`
	}{}
	if err := s.DB.Get(&row, `SELECT created_by, type FROM cbt_resources WHERE id = $1`, resourceID); err != nil {
		WriteError(w, http.StatusNotFound, "Resource not found")
		return
	}
	canManage := strings.EqualFold(CurrentRole(r), services.RoleAdmin)
	if !canManage && (row.CreatedBy == nil || *row.CreatedBy != userID) {
		WriteError(w, http.StatusNotFound, "Resource not found")
		return
	}
	linkURL := req.LinkURL
	if row.Type != "link" {
		linkURL = nil
	}
	_, err = s.DB.Exec(`
UPDATE cbt_resources
SET title = $2, description = $3, link_url = COALESCE($4, link_url), updated_at = $5
WHERE id = $1
`, resourceID, title, req.Description, linkURL, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.respondResource(w, http.StatusOK, resourceID)
}

func (s *Server) DeleteResource(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)
	resourceID := chi.URLParam(r, "resourceId")
	row := struct {
		CreatedBy   *string `db:"created_by"`
		FileMediaID *string `db:"file_media_id"`
	}{}
	if err := s.DB.Get(&row, `SELECT created_by, file_media_id FROM cbt_resources WHERE id = $1`, resourceID); err != nil {
		WriteError(w, http.StatusNotFound, "Resource not found")
		return
	}
	canManage := strings.EqualFold(CurrentRole(r), services.RoleAdmin)
	if !canManage && (row.CreatedBy == nil || *row.CreatedBy != userID) {
		WriteError(w, http.StatusNotFound, "Resource not found")
		return
	}
	_, _ = s.DB.Exec(`DELETE FROM cbt_resources WHERE id = $1`, resourceID)
	if row.FileMediaID != nil && *row.FileMediaID != "" {
		_ = services.DeleteAsset(s.DB, s.Config.MediaStoragePath, *row.FileMediaID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) SetResourceStatus(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resourceId")
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
	result, err := s.DB.Exec(`UPDATE cbt_resources SET status = $2, updated_at = $3 WHERE id = $1`, resourceID, status, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		WriteError(w, http.StatusNotFound, "Resource not found")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"id": resourceID, "status": status})
}

func (s *Server) respondResource(w http.ResponseWriter, status int, resourceID string) {
	row := resourceRow{}
	if err := s.DB.Get(&row, `
SELECT id, title, description, type, file_media_id, link_url, status, created_at
FROM cbt_resources
WHERE id = $1
`, resourceID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, status, resourceDTO(row))
}
