package api

import (
	"net/http"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.store.GetProfileByUserID(r.Context(), currentUser(r.Context()).ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profile, s.logger)
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	created, err := s.store.CreateProfile(r.Context(), currentUser(r.Context()).ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]bool{"created": created}, s.logger)
}

type updateProfileRequest struct {
	Username  string `json:"username" validate:"omitempty,min=1,max=64"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,http_url"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := s.decode(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	updated, err := s.store.UpdateProfile(r.Context(), req.Username, req.AvatarURL)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"updated": updated}, s.logger)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.store.SignOut(r.Context()); err != nil {
		s.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
