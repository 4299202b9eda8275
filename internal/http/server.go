package httpapi

import (
	"context"
	"net/http"
	"time"

	"mindhaven-backend-go/internal/config"
	"mindhaven-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	DB         *sqlx.DB
	Config     config.Config
	Tokens     services.TokenService
	MetricsHub *services.MetricsHub
}

func NewServer(db *sqlx.DB, cfg config.Config, hub *services.MetricsHub) *Server {
	tokens := services.TokenService{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  time.Duration(cfg.AccessTTLSeconds) * time.Second,
		RefreshTTL: time.Duration(cfg.RefreshTTLSeconds) * time.Second,
	}
	return &Server{
		DB:         db,
		Config:     cfg,
		Tokens:     tokens,
		MetricsHub: hub,
	}
}

func (s *Server) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", s.Signup)
		api.Post("/auth/login", s.Login)
		api.Post("/auth/refresh", s.Refresh)
		api.Post("/auth/logout", s.Logout)
		api.Post("/auth/forgot-password", s.ForgotPassword)

		api.Route("/me", func(me chi.Router) {
			me.Use(WithAuth(s.Tokens))
			me.Get("/", s.Me)
			me.Put("/profile", s.UpdateProfile)
			me.Put("/password", s.ChangePassword)
			me.Post("/avatar", s.UploadAvatar)
			me.Post("/mood", s.LogMood)
			me.Get("/mood", s.MoodCheck)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(WithAuth(s.Tokens))
			admin.Use(RequireRole(services.RoleAdmin))
			admin.Get("/metrics/history", s.MetricsHistory)
			admin.Route("/users", func(users chi.Router) {
				users.Get("/", s.ListUsers)
				users.Post("/", s.CreateUser)
				users.Put("/{userId}", s.UpdateUser)
				users.Delete("/{userId}", s.DeleteUser)
			})
		})

		api.Route("/workshops", func(workshops chi.Router) {
			workshops.With(WithAuth(s.Tokens), RequireAnyRole(services.RoleStaff, services.RoleAdmin)).Get("/", s.ListWorkshops)
			workshops.With(WithAuth(s.Tokens), RequireAnyRole(services.RoleStaff, services.RoleAdmin)).Post("/", s.CreateWorkshop)
			workshops.With(WithAuth(s.Tokens), RequireAnyRole(services.RoleStaff, services.RoleAdmin)).Post("/image", s.UploadWorkshopImage)
			workshops.Get("/{workshopId}", s.GetWorkshop)
			workshops.With(WithAuth(s.Tokens), RequireAnyRole(services.RoleStaff, services.RoleAdmin)).Put("/{workshopId}", s.UpdateWorkshop)
			workshops.With(WithAuth(s.Tokens), RequireAnyRole(services.RoleStaff, services.RoleAdmin)).Delete("/{workshopId}", s.DeleteWorkshop)
			workshops.With(WithAuth(s.Tokens), RequireRole(services.RoleAdmin)).Put("/{workshopId}/status", s.SetWorkshopStatus)
			workshops.Post("/{workshopId}/register", s.RegisterForWorkshop)
			workshops.Delete("/{workshopId}/register", s.CancelWorkshopRegistration)
			workshops.With(WithAuth(s.Tokens), RequireAnyRole(services.RoleStaff, services.RoleAdmin)).Get("/{workshopId}/participants", s.WorkshopParticipants)
		})

		api.Route("/sessions", func(sessions chi.Router) {
			sessions.With(WithAuth(s.Tokens), RequireAnyRole(services.RoleCounselor, services.RoleAdmin)).Get("/", s.ListSessions)
			sessions.With(WithAuth(s.Tokens), RequireAnyRole(services.RoleCounselor, services.RoleAdmin)).Post("/", s.CreateSession)
			sessions.Get("/{sessionId}", s.GetSession)
			sessions.With(WithAuth(s.Tokens), RequireAnyRole(services.RoleCounselor, services.RoleAdmin)).Put("/{sessionId}", s.UpdateSession)
			sessions.With(WithAuth(s.Tokens), RequireAnyRole(services.RoleCounselor, services.RoleAdmin)).Delete("/{sessionId}", s.DeleteSession)
			sessions.With(WithAuth(s.Tokens), RequireRole(services.RoleAdmin)).Put("/{sessionId}/status", s.SetSessionStatus)
			sessions.Post("/{sessionId}/register", s.RegisterForSession)
			sessions.Delete("/{sessionId}/register", s.CancelSessionRegistration)
			sessions.With(WithAuth(s.Tokens), RequireAnyRole(services.RoleCounselor, services.RoleAdmin)).Get("/{sessionId}/participants", s.SessionParticipants)
			sessions.With(WithAuth(s.Tokens), RequireAnyRole(services.RoleCounselor, services.RoleAdmin)).Delete("/{sessionId}/participants/{email}", s.RemoveSessionParticipant)
		})

		api.Route("/categories", func(categories chi.Router) {
			categories.Get("/", s.ListCategories)
			categories.With(WithAuth(s.Tokens), RequireAnyRole(services.RoleStaff, services.RoleAdmin)).Post("/", s.CreateCategory)
			categories.With(WithAuth(s.Tokens), RequireAnyRole(services.RoleStaff, services.RoleAdmin)).Put("/{categoryId}", s.UpdateCategory)
			categories.With(WithAuth(s.Tokens), RequireAnyRole(services.RoleStaff, services.RoleAdmin)).Delete("/{categoryId}", s.DeleteCategory)
		})

		api.Route("/cbt-resources", func(resources chi.Router) {
			resources.Use(WithAuth(s.Tokens))
			resources.With(RequireAnyRole(services.RoleStaff, services.RoleAdmin)).Get("/", s.ListResources)
			resources.With(RequireAnyRole(services.RoleStaff, services.RoleAdmin)).Post("/upload", s.UploadResource)
			resources.With(RequireAnyRole(services.RoleStaff, services.RoleAdmin)).Put("/{resourceId}", s.UpdateResource)
			resources.With(RequireAnyRole(services.RoleStaff, services.RoleAdmin)).Delete("/{resourceId}", s.DeleteResource)
			resources.With(RequireRole(services.RoleAdmin)).Patch("/{resourceId}/status", s.SetResourceStatus)
		})

		api.Route("/public", func(pub chi.Router) {
			pub.Get("/workshops", s.PublicWorkshops)
			pub.Get("/sessions", s.PublicSessions)
			pub.Get("/cbt-resources", s.PublicResources)
		})

		api.Post("/contact", s.CreateContactMessage)
		api.With(WithAuth(s.Tokens), RequireRole(services.RoleAdmin)).Get("/contact", s.ListContactMessages)

		api.With(WithAuth(s.Tokens), RequireAnyRole(services.RoleStaff, services.RoleAdmin)).Get("/staff/dashboard/stats", s.DashboardStats)

		api.Get("/media/assets/{assetId}/content", s.MediaContent)
	})

	r.Get("/ws/metrics", s.MetricsSocket)
	return r
}
