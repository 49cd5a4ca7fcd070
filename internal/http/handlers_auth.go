package http

import (
	"net/http"

	"expensetracker/internal/core"
)

type loginRequest struct {
	Name string `json:"name"`
}

type sessionResponse struct {
	User *core.User `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.store.Login(r.Context(), sanitizeInput(req.Name)); err != nil {
		respondStoreError(w, r, err)
		return
	}

	snap := s.store.Snapshot()
	respondJSON(w, http.StatusOK, sessionResponse{User: snap.User})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Logout(r.Context()); err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{User: nil})
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	snap := s.store.Snapshot()
	respondJSON(w, http.StatusOK, sessionResponse{User: snap.User})
}
