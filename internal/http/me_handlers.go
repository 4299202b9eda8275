package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"mindhaven-backend-go/internal/services"
)

type ProfileUpdateRequest struct {
	Phone     *string `json:"phone"`
	Gender    *string `json:"gender"`
	BirthDate *string `json:"birthDate"`
	Bio       *string `json:"bio"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type MoodRequest struct {
	Mood string `json:"mood"`
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)
	userDTO, err := buildUserDTO(s.DB, userID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]*UserDTO{"user": userDTO})
}

func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)
	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	now := time.Now().UTC()
	_, _ = s.DB.Exec(`
INSERT INTO user_profiles (user_id, created_at, updated_at)
VALUES ($1,$2,$2)
ON CONFLICT (user_id) DO NOTHING
`, userID, now)
	_, err := s.DB.Exec(`
UPDATE user_profiles
SET phone = $2,
    gender = $3,
    birth_date = $4,
    bio = $5,
    updated_at = $6
WHERE user_id = $1
`, userID, req.Phone, req.Gender, parseBirthDate(req.BirthDate), req.Bio, now)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	userDTO, err := buildUserDTO(s.DB, userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]*UserDTO{"user": userDTO})
}

func (s *Server) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		WriteError(w, http.StatusBadRequest, "Password confirmation does not match")
		return
	}
	row := struct {
		PasswordHash string `db:"password_hash"`
	}{}
	if err := s.DB.Get(&row, `SELECT password_hash FROM users WHERE id = $1`, userID); err != nil {
		WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	if !s.Tokens.VerifyPassword(req.CurrentPassword, row.PasswordHash) {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	hash, err := s.Tokens.HashPassword(req.NewPassword)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	_, err = s.DB.Exec(`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`, hash, time.Now().UTC(), userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) UploadAvatar(w http.ResponseWriter, r *http.Request) {
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
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	assetID, url, err := services.SaveMediaAsset(s.DB, s.Config.MediaStoragePath, services.BucketAvatars, contentType, header.Filename, userID, file)
	if err != nil {
		if serr, ok := err.(services.ServiceError); ok {
			WriteError(w, serr.Status, serr.Message)
			return
		}
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	var previous *string
	_ = s.DB.Get(&previous, `SELECT avatar_media_id FROM user_profiles WHERE user_id = $1`, userID)
	now := time.Now().UTC()
	_, _ = s.DB.Exec(`
INSERT INTO user_profiles (user_id, created_at, updated_at)
VALUES ($1,$2,$2)
ON CONFLICT (user_id) DO NOTHING
`, userID, now)
	_, _ = s.DB.Exec(`UPDATE user_profiles SET avatar_media_id = $1, updated_at = $2 WHERE user_id = $3`, assetID, now, userID)
	if previous != nil && *previous != "" && *previous != assetID {
		_ = services.DeleteAsset(s.DB, s.Config.MediaStoragePath, *previous)
	}
	WriteJSON(w, http.StatusOK, map[string]string{"assetId": assetID, "url": url})
}

func (s *Server) LogMood(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)
	var req MoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	mood := strings.TrimSpace(req.Mood)
	if mood == "" {
		WriteError(w, http.StatusBadRequest, "Mood is required")
		return
	}
	last, err := services.LastMoodLogged(s.DB, userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	now := time.Now().UTC()
	status := services.MoodStatusAt(last, now)
	if !status.CanLog {
		WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message":        "You can only log your mood once every 24 hours.",
			"hoursUntilNext": status.HoursUntilNext,
		})
		return
	}
	if err := services.LogMood(s.DB, userID, mood, now); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"mood": mood, "loggedAt": now})
}

// MoodCheck lets the frontend disable the mood UI ahead of time. Same
// cooldown arithmetic as LogMood, no mutation.
func (s *Server) MoodCheck(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)
	last, err := services.LastMoodLogged(s.DB, userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, services.MoodStatusAt(last, time.Now().UTC()))
}

func parseBirthDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &parsed
}
