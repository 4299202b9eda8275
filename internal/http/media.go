package httpapi

import (
	"net/http"
	"path/filepath"

	"mindhaven-backend-go/internal/models"

	"github.com/go-chi/chi/v5"
)

func (s *Server) MediaContent(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetId")
	asset := models.MediaAsset{}
	if err := s.DB.Get(&asset, `
SELECT id, owner_user_id, bucket, storage_key, filename, content_type, size_bytes, sha256, created_at
FROM media_assets WHERE id = $1
`, assetID); err != nil {
		WriteError(w, http.StatusNotFound, "Media not found")
		return
	}
	path := filepath.Join(s.Config.MediaStoragePath, asset.Bucket, asset.StorageKey)
	if asset.Filename != nil {
		w.Header().Set("Content-Disposition", "inline; filename=\""+*asset.Filename+"\"")
	}
	if asset.ContentType != "" {
		w.Header().Set("Content-Type", asset.ContentType)
	}
	http.ServeFile(w, r, path)
}
