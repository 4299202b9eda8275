package httpapi

import (
	"time"

	"mindhaven-backend-go/internal/services"

	"github.com/jmoiron/sqlx"
)

type ProfileDTO struct {
	Phone          *string    `json:"phone,omitempty"`
	Gender         *string    `json:"gender,omitempty"`
	BirthDate      *string    `json:"birthDate,omitempty"`
	Bio            *string    `json:"bio,omitempty"`
	AvatarURL      *string    `json:"avatarUrl,omitempty"`
	MoodToday      *string    `json:"moodToday,omitempty"`
	LastMoodLogged *time.Time `json:"lastMoodLogged,omitempty"`
}

type UserDTO struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Role           string      `json:"role"`
	Specialization *string     `json:"specialization,omitempty"`
	Profile        *ProfileDTO `json:"profile,omitempty"`
	LastLoginAt    *time.Time  `json:"lastLoginAt,omitempty"`
}

func buildUserDTO(db *sqlx.DB, userID string) (*UserDTO, error) {
	row := struct {
		ID             string     `db:"id"`
		Name           string     `db:"name"`
		Email          string     `db:"email"`
		Role           string     `db:"role"`
		Specialization *string    `db:"specialization"`
		LastLogin      *time.Time `db:"last_login_at"`
		Phone          *string    `db:"phone"`
		Gender         *string    `db:"gender"`
		BirthDate      *time.Time `db:"birth_date"`
		Bio            *string    `db:"bio"`
		AvatarID       *string    `db:"avatar_media_id"`
		MoodToday      *string    `db:"mood_today"`
		LastMood       *time.Time `db:"last_mood_logged"`
	}{}
	if err := db.Get(&row, `
SELECT u.id, u.name, u.email, u.role, u.specialization, u.last_login_at,
       p.phone, p.gender, p.birth_date, p.bio, p.avatar_media_id, p.mood_today, p.last_mood_logged
FROM users u
LEFT JOIN user_profiles p ON p.user_id = u.id
WHERE u.id = $1
`, userID); err != nil {
		return nil, err
	}
	var birthStr *string
	if row.BirthDate != nil {
		formatted := row.BirthDate.Format("2006-01-02")
		birthStr = &formatted
	}
	var avatarURL *string
	if row.AvatarID != nil {
		url := services.BuildAssetURL(*row.AvatarID)
		avatarURL = &url
	}
	profile := (*ProfileDTO)(nil)
	if row.Phone != nil || row.Gender != nil || row.BirthDate != nil || row.Bio != nil || row.AvatarID != nil || row.MoodToday != nil {
		profile = &ProfileDTO{
			Phone:          row.Phone,
			Gender:         row.Gender,
			BirthDate:      birthStr,
			Bio:            row.Bio,
			AvatarURL:      avatarURL,
			MoodToday:      row.MoodToday,
			LastMoodLogged: row.LastMood,
		}
	}
	return &UserDTO{
		ID:             row.ID,
		Name:           row.Name,
		Email:          row.Email,
		Role:           row.Role,
		Specialization: row.Specialization,
		Profile:        profile,
		LastLoginAt:    row.LastLogin,
	}, nil
}
