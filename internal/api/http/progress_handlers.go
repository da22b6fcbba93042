package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	auth "github.com/mciskills/ai-foundations-lms/internal/auth/middleware"
	"github.com/mciskills/ai-foundations-lms/internal/progress"
	"github.com/mciskills/ai-foundations-lms/internal/store"
)

type progressPayload struct {
	Progress        store.Progress `json:"progress"`
	ProgressPercent int            `json:"progressPercent"`
	ResumeModuleID  string         `json:"resumeModuleId"`
}

func (s *Server) progressPayload(t *progress.Tracker) progressPayload {
	return progressPayload{
		Progress:        t.Snapshot(),
		ProgressPercent: t.Percent(s.catalog.Len()),
		ResumeModuleID:  t.ResumePoint(s.catalog),
	}
}

// GET /progress
func (s *Server) handleGetProgress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := s.tracker(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, s.progressPayload(t))
	}
}

// POST /progress/modules/{moduleID}/quiz  { "answers": [0,2,...] }
// Submission always completes the module; there is no pass/fail gate.
func (s *Server) handleSubmitQuiz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		moduleID := chi.URLParam(r, "moduleID")
		m, ok := s.catalog.ByID(moduleID)
		if !ok {
			http.Error(w, "unknown module", http.StatusNotFound)
			return
		}
		var req struct {
			Answers []int `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		t, err := s.tracker(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		score, err := t.SubmitQuiz(r.Context(), m, req.Answers)
		if err != nil {
			http.Error(w, "save failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"score": score, "progress": s.progressPayload(t)})
	}
}

// POST /progress/modules/{moduleID}/toggle — manual completion override,
// independent of scoring.
func (s *Server) handleToggleModule() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		moduleID := chi.URLParam(r, "moduleID")
		if _, ok := s.catalog.ByID(moduleID); !ok {
			http.Error(w, "unknown module", http.StatusNotFound)
			return
		}
		t, err := s.tracker(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		if err := t.ToggleModule(r.Context(), moduleID); err != nil {
			http.Error(w, "save failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, s.progressPayload(t))
	}
}

// POST /progress/simulations/{simulationID}
func (s *Server) handleCompleteSimulation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		simID := chi.URLParam(r, "simulationID")
		if simID == "" {
			http.Error(w, "simulation id required", http.StatusBadRequest)
			return
		}
		t, err := s.tracker(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		if err := t.CompleteSimulation(r.Context(), simID); err != nil {
			http.Error(w, "save failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, s.progressPayload(t))
	}
}

// POST /progress/certificate — sticky flag, set on first export.
func (s *Server) handleCertificateDownloaded() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := s.tracker(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		if err := t.MarkCertificateDownloaded(r.Context()); err != nil {
			http.Error(w, "save failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, s.progressPayload(t))
	}
}
