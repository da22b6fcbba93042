package api

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	auth "github.com/mciskills/ai-foundations-lms/internal/auth/middleware"
	"github.com/mciskills/ai-foundations-lms/internal/session"
	"github.com/mciskills/ai-foundations-lms/internal/store"
)

type authResponse struct {
	AccessToken string         `json:"access_token"`
	Account     accountPayload `json:"account"`
}

// POST /auth/register
func (s *Server) handleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req store.Profile
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.FullName == "" || req.Email == "" {
			http.Error(w, "fullName and email required", http.StatusBadRequest)
			return
		}

		acct, err := s.mgr.Register(r.Context(), req)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		s.cacheTracker(acct)
		s.respondAuth(w, acct)
	}
}

// POST /auth/login  { "email": "...", "admin": bool, "password": "..." }
func (s *Server) handleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Admin    bool   `json:"admin"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		// Admin portal password, when one is configured.
		if req.Admin && s.cfg.AdminPassHash != "" {
			if bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPassHash), []byte(req.Password)) != nil {
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
				return
			}
		}

		acct, err := s.mgr.Login(r.Context(), req.Email, req.Admin)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		s.cacheTracker(acct)
		s.respondAuth(w, acct)
	}
}

// POST /auth/logout — a pure local reset; never depends on a store call.
func (s *Server) handleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		s.dropTracker(sub)
		s.mgr.Logout()
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /auth/session — resolves the bearer identity. A dangling identity
// (record wiped) is a soft logout, answered with 401 and no error payload.
func (s *Server) handleSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		acct, err := s.mgr.Resolve(r.Context(), sub)
		if err != nil {
			s.dropTracker(sub)
			http.Error(w, "session expired", http.StatusUnauthorized)
			return
		}
		s.cacheTracker(acct)
		writeJSON(w, s.accountPayload(acct))
	}
}

func (s *Server) respondAuth(w http.ResponseWriter, acct *session.Account) {
	role := "student"
	if acct.Admin {
		role = "admin"
	}
	tok, err := s.auth.IssueJWT(acct.Email, role)
	if err != nil {
		http.Error(w, "issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, authResponse{AccessToken: tok, Account: s.accountPayload(acct)})
}
