package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/skillsift/skillsift/internal/embedding"
	"github.com/skillsift/skillsift/internal/models"
	"github.com/skillsift/skillsift/internal/storage"
)

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("recommend request", zap.String("query", req.Query), zap.Int("top_k", req.TopK))

	response, err := s.engine.Recommend(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmptyQuery), errors.Is(err, models.ErrInvalidTopK):
			s.respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, embedding.ErrUnavailable):
			s.logger.Error("recommend failed: embedding unavailable", zap.Error(err))
			s.respondError(w, http.StatusServiceUnavailable, err.Error())
		default:
			s.logger.Error("recommend failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("reindex requested")
	if err := s.engine.Rebuild(r.Context()); err != nil {
		s.logger.Error("reindex failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	st := s.engine.Status()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "rebuilt",
		"entries": st.IndexSize,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.engine.Status()
	resp := map[string]interface{}{
		"ready":               st.Ready,
		"index_size":          st.IndexSize,
		"provider":            st.Provider,
		"provider_downgraded": st.EmbedderDowngr,
		"reranker":            st.Reranker,
	}
	if st.Ready {
		resp["dimensions"] = st.Dimensions
		resp["built_at"] = st.BuiltAt
	}

	configInfo := map[string]interface{}{
		"catalog_path":  s.config.Storage.CatalogPath,
		"index_path":    s.config.Storage.IndexPath,
		"metadata_path": s.config.Storage.MetadataPath,
		"default_top_k": s.config.Recommend.DefaultTopK,
		"max_top_k":     s.config.Recommend.MaxTopK,
	}
	diskBytes, err := storage.DiskUsageBytes(
		s.config.Storage.IndexPath,
		s.config.Storage.MetadataPath,
	)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
