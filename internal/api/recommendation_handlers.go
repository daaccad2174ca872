package api

import (
	"net/http"

	"github.com/spigell/outfit-advisor/internal/outfit"
	"github.com/spigell/outfit-advisor/internal/recommend"
)

type createUploadRequest struct {
	Image string `json:"image" validate:"required,startswith=data:image/"`
}

type uploadResponse struct {
	UploadID int64  `json:"upload_id"`
	ImageURL string `json:"image_url"`
}

func (s *Server) handleCreateUpload(w http.ResponseWriter, r *http.Request) {
	var req createUploadRequest
	if err := s.decode(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	ctx := r.Context()
	user := currentUser(ctx)

	imageURL, err := s.store.StoreImage(ctx, req.Image)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	uploadID, err := s.store.InsertUpload(ctx, imageURL, user.ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{UploadID: uploadID, ImageURL: imageURL}, s.logger)
}

type validateImageRequest struct {
	URL string `json:"url" validate:"required,http_url"`
}

func (s *Server) handleValidateImage(w http.ResponseWriter, r *http.Request) {
	var req validateImageRequest
	if err := s.decode(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"url":   req.URL,
		"valid": s.images.IsImageURLValid(r.Context(), req.URL),
	}, s.logger)
}

type createRecommendationRequest struct {
	UploadID       int64  `json:"upload_id" validate:"gte=0"`
	Image          string `json:"image"`
	ImageURL       string `json:"image_url"`
	Gender         string `json:"gender" validate:"required,oneof=male female"`
	ClothingType   string `json:"clothing_type" validate:"required,oneof=top bottom"`
	Model          string `json:"model"`
	MaxSuggestions int    `json:"max_suggestions" validate:"gte=0,lte=10"`
}

func (s *Server) handleCreateRecommendation(w http.ResponseWriter, r *http.Request) {
	var req createRecommendationRequest
	if err := s.decode(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	rec, err := s.recommender.Recommend(r.Context(), recommend.Request{
		UserID:         currentUser(r.Context()).ID,
		UploadID:       req.UploadID,
		ImageDataURL:   req.Image,
		ImageURL:       req.ImageURL,
		Gender:         outfit.Gender(req.Gender),
		ClothingType:   outfit.ClothingType(req.ClothingType),
		Model:          req.Model,
		MaxSuggestions: req.MaxSuggestions,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec, s.logger)
}

func (s *Server) handleListRecommendations(w http.ResponseWriter, r *http.Request) {
	previews, err := s.store.GetPreviewsByUserID(r.Context(), currentUser(r.Context()).ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, previews, s.logger)
}

type recommendationDetail struct {
	Recommendation *outfit.Recommendation `json:"recommendation"`
	Param          *outfit.Param          `json:"param"`
	Upload         *outfit.Upload         `json:"upload"`
	Suggestions    []outfit.Suggestion    `json:"suggestions"`
}

func (s *Server) handleGetRecommendation(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.ownedRecommendation(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	param, err := s.store.GetParamByID(ctx, rec.ParamID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	upload, err := s.store.GetUploadByID(ctx, rec.UploadID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	suggestions, err := s.store.GetSuggestions(ctx, rec.ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recommendationDetail{
		Recommendation: rec,
		Param:          param,
		Upload:         upload,
		Suggestions:    suggestions,
	}, s.logger)
}

func (s *Server) handleGetSuggestions(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.ownedRecommendation(w, r)
	if !ok {
		return
	}

	suggestions, err := s.store.GetSuggestions(r.Context(), rec.ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, suggestions, s.logger)
}

// ownedRecommendation loads the {id} recommendation of the current user. Other
// users' recommendations are reported as missing.
func (s *Server) ownedRecommendation(w http.ResponseWriter, r *http.Request) (*outfit.Recommendation, bool) {
	id, err := int64Param(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return nil, false
	}

	return s.recommendationOf(w, r, id)
}

// ownedSuggestion loads the {id} suggestion when its recommendation belongs to
// the current user.
func (s *Server) ownedSuggestion(w http.ResponseWriter, r *http.Request) (*outfit.Suggestion, bool) {
	id, err := int64Param(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return nil, false
	}

	suggestion, err := s.store.GetSuggestionByID(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return nil, false
	}

	if _, ok := s.recommendationOf(w, r, suggestion.RecommendationID); !ok {
		return nil, false
	}

	return suggestion, true
}

func (s *Server) recommendationOf(w http.ResponseWriter, r *http.Request, id int64) (*outfit.Recommendation, bool) {
	rec, err := s.store.GetRecommendationByID(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return nil, false
	}

	if rec.UserID != "" && rec.UserID != currentUser(r.Context()).ID {
		writeError(w, http.StatusNotFound, "not found", s.logger)
		return nil, false
	}

	return rec, true
}

func (s *Server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	suggestion, ok := s.ownedSuggestion(w, r)
	if !ok {
		return
	}

	results, err := s.store.GetResults(r.Context(), suggestion.ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, results, s.logger)
}

type attachResultsRequest struct {
	Matches []matchRequest `json:"matches" validate:"required,min=1,dive"`
}

type matchRequest struct {
	ItemID   string  `json:"item_id" validate:"required"`
	Distance float64 `json:"distance" validate:"gte=0"`
}

func (s *Server) handleAttachResults(w http.ResponseWriter, r *http.Request) {
	suggestion, ok := s.ownedSuggestion(w, r)
	if !ok {
		return
	}

	var req attachResultsRequest
	if err := s.decode(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	matches := make([]recommend.ItemMatch, 0, len(req.Matches))
	for _, m := range req.Matches {
		matches = append(matches, recommend.ItemMatch{ItemID: m.ItemID, Distance: m.Distance})
	}

	ids, err := s.recommender.AttachResults(r.Context(), suggestion.ID, matches)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string][]int64{"ids": ids}, s.logger)
}
