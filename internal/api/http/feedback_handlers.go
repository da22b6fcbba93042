package api

import (
	"encoding/json"
	"net/http"
	"time"

	auth "github.com/mciskills/ai-foundations-lms/internal/auth/middleware"
	"github.com/mciskills/ai-foundations-lms/internal/store"
)

// POST /feedback  { "rating": 1..5, "comment": "..." }
// One course rating per student; the UI offers no edit path but the write
// itself is a plain field merge.
func (s *Server) handleSubmitFeedback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := store.NormalizeKey(auth.SubjectFromContext(r.Context()))
		if sub == s.mgr.AdminEmail() {
			// The reserved administrator has no record to attach feedback to.
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req struct {
			Rating  int    `json:"rating"`
			Comment string `json:"comment"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Rating < 1 || req.Rating > 5 {
			http.Error(w, "rating must be 1-5", http.StatusBadRequest)
			return
		}

		fb := store.Feedback{
			Rating:  req.Rating,
			Comment: req.Comment,
			Date:    time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.store.MergeField(r.Context(), sub, "feedback", fb); err != nil {
			http.Error(w, "save failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, fb)
	}
}
