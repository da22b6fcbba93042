package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mciskills/ai-foundations-lms/internal/roster"
)

// GET /roster?q=term
func (s *Server) handleRoster() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := s.rosterView()
		if err != nil {
			http.Error(w, "roster unavailable", http.StatusInternalServerError)
			return
		}
		writeJSON(w, v.Search(r.URL.Query().Get("q")))
	}
}

// GET /roster/stats
func (s *Server) handleRosterStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := s.rosterView()
		if err != nil {
			http.Error(w, "roster unavailable", http.StatusInternalServerError)
			return
		}
		writeJSON(w, v.Stats())
	}
}

// PUT /roster/{email}/feedback  { "text": "..." }
func (s *Server) handleRosterFeedback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		v, err := s.rosterView()
		if err != nil {
			http.Error(w, "roster unavailable", http.StatusInternalServerError)
			return
		}
		if err := v.SaveFeedback(r.Context(), chi.URLParam(r, "email"), req.Text); err != nil {
			http.Error(w, "save failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /roster/export?q=term — CSV download of the (filtered) roster.
func (s *Server) handleRosterExport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := s.rosterView()
		if err != nil {
			http.Error(w, "roster unavailable", http.StatusInternalServerError)
			return
		}
		rows := v.Search(r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="student_database.csv"`)
		if err := roster.WriteCSV(w, rows); err != nil {
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
	}
}
