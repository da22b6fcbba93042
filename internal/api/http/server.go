// Package api exposes the course core over HTTP: auth, per-student progress
// mutations, the student feedback rating, and the administrator roster.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	auth "github.com/mciskills/ai-foundations-lms/internal/auth/middleware"
	"github.com/mciskills/ai-foundations-lms/internal/config"
	"github.com/mciskills/ai-foundations-lms/internal/course"
	"github.com/mciskills/ai-foundations-lms/internal/progress"
	"github.com/mciskills/ai-foundations-lms/internal/rbac"
	"github.com/mciskills/ai-foundations-lms/internal/roster"
	"github.com/mciskills/ai-foundations-lms/internal/session"
	"github.com/mciskills/ai-foundations-lms/internal/store"
)

type Server struct {
	cfg     config.Config
	store   store.RecordStore
	mgr     *session.Manager
	auth    *auth.AuthService
	catalog course.Catalog

	mu       sync.Mutex
	trackers map[string]*progress.Tracker
	view     *roster.View
}

func NewServer(cfg config.Config, st store.RecordStore, mgr *session.Manager, authSvc *auth.AuthService, cat course.Catalog) *Server {
	return &Server{
		cfg:      cfg,
		store:    st,
		mgr:      mgr,
		auth:     authSvc,
		catalog:  cat,
		trackers: map[string]*progress.Tracker{},
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth())
	r.Post("/auth/register", s.handleRegister())
	r.Post("/auth/login", s.handleLogin())

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(s.auth))

		pr.Post("/auth/logout", s.handleLogout())
		pr.With(rbac.Require("session:view")).Get("/auth/session", s.handleSession())

		pr.With(rbac.Require("progress:view")).Get("/progress", s.handleGetProgress())
		pr.With(rbac.Require("progress:update")).
			Post("/progress/modules/{moduleID}/quiz", s.handleSubmitQuiz())
		pr.With(rbac.Require("progress:update")).
			Post("/progress/modules/{moduleID}/toggle", s.handleToggleModule())
		pr.With(rbac.Require("progress:update")).
			Post("/progress/simulations/{simulationID}", s.handleCompleteSimulation())
		pr.With(rbac.Require("progress:update")).
			Post("/progress/certificate", s.handleCertificateDownloaded())

		pr.With(rbac.Require("feedback:submit")).Post("/feedback", s.handleSubmitFeedback())

		pr.With(rbac.Require("roster:view")).Get("/roster", s.handleRoster())
		pr.With(rbac.Require("roster:view")).Get("/roster/stats", s.handleRosterStats())
		pr.With(rbac.Require("roster:feedback")).Put("/roster/{email}/feedback", s.handleRosterFeedback())
		pr.With(rbac.Require("roster:export")).Get("/roster/export", s.handleRosterExport())
	})

	return r
}

// Close releases the roster subscription, if one was opened.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view != nil {
		s.view.Close()
		s.view = nil
	}
}

// tracker returns the live progress tracker for an identity, resolving it
// from the store on first use. Mutating routes are only reachable with a
// token issued after resolution, so a missing record here means the data was
// wiped underneath an active session.
func (s *Server) tracker(ctx context.Context, email string) (*progress.Tracker, error) {
	key := store.NormalizeKey(email)

	s.mu.Lock()
	if t, ok := s.trackers[key]; ok {
		s.mu.Unlock()
		return t, nil
	}
	s.mu.Unlock()

	acct, err := s.mgr.Resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.trackers[key] = acct.Tracker
	s.mu.Unlock()
	return acct.Tracker, nil
}

func (s *Server) cacheTracker(acct *session.Account) {
	s.mu.Lock()
	s.trackers[acct.Email] = acct.Tracker
	s.mu.Unlock()
}

func (s *Server) dropTracker(email string) {
	s.mu.Lock()
	delete(s.trackers, store.NormalizeKey(email))
	s.mu.Unlock()
}

// rosterView opens the live roster subscription lazily and keeps it for the
// life of the process; Close tears it down.
func (s *Server) rosterView() (*roster.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view != nil {
		return s.view, nil
	}
	v, err := roster.Open(s.store, s.catalog)
	if err != nil {
		return nil, err
	}
	s.view = v
	return v, nil
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": true, "online": s.store.Online()})
	}
}

/* ---- shared helpers ---- */

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeSessionError maps the session package's user input errors onto
// status codes; anything else is a 500.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrEmptyEmail):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, session.ErrReservedEmail), errors.Is(err, session.ErrNotAdmin):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, session.ErrAccountExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, session.ErrAccountNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

type accountPayload struct {
	Email            string         `json:"email"`
	Admin            bool           `json:"admin"`
	Profile          store.Profile  `json:"profile"`
	RegistrationDate string         `json:"registrationDate,omitempty"`
	ResumeModuleID   string         `json:"resumeModuleId,omitempty"`
	Progress         store.Progress `json:"progress"`
	ProgressPercent  int            `json:"progressPercent"`
}

func (s *Server) accountPayload(acct *session.Account) accountPayload {
	return accountPayload{
		Email:            acct.Email,
		Admin:            acct.Admin,
		Profile:          acct.Profile,
		RegistrationDate: acct.RegistrationDate,
		ResumeModuleID:   acct.ResumeModuleID,
		Progress:         acct.Tracker.Snapshot(),
		ProgressPercent:  acct.Tracker.Percent(s.catalog.Len()),
	}
}
