package api

import (
	"net/http"

	"github.com/spigell/outfit-advisor/internal/outfit"
	"github.com/spigell/outfit-advisor/internal/recommend"
)

type searchImageRequest struct {
	ImageURL     string `json:"image_url" validate:"required,http_url"`
	Gender       string `json:"gender" validate:"required,oneof=male female"`
	ClothingType string `json:"clothing_type" validate:"required,oneof=top bottom"`
	Model        string `json:"model"`
}

type searchTextRequest struct {
	Text         string `json:"text" validate:"required,max=2000"`
	ImageURL     string `json:"image_url" validate:"omitempty,http_url"`
	Gender       string `json:"gender" validate:"required,oneof=male female"`
	ClothingType string `json:"clothing_type" validate:"required,oneof=top bottom"`
	Model        string `json:"model"`
}

func (s *Server) handleSearchImage(w http.ResponseWriter, r *http.Request) {
	var req searchImageRequest
	if err := s.decode(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	drafts, err := s.recommender.DescribeImage(r.Context(), recommend.SearchRequest{
		ImageURL:     req.ImageURL,
		Gender:       outfit.Gender(req.Gender),
		ClothingType: outfit.ClothingType(req.ClothingType),
		Model:        req.Model,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, drafts, s.logger)
}

func (s *Server) handleSearchText(w http.ResponseWriter, r *http.Request) {
	var req searchTextRequest
	if err := s.decode(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	drafts, err := s.recommender.DescribeText(r.Context(), recommend.SearchRequest{
		Text:         req.Text,
		ImageURL:     req.ImageURL,
		Gender:       outfit.Gender(req.Gender),
		ClothingType: outfit.ClothingType(req.ClothingType),
		Model:        req.Model,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, drafts, s.logger)
}
