package httpapi

import (
	"net/http"
	"time"

	"mindhaven-backend-go/internal/services"
)

func (s *Server) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := services.CollectDashboardStats(s.DB, time.Now())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}
