package api

import (
	"net/http"

	"github.com/spigell/outfit-advisor/internal/util"
)

const maxItemsPerRequest = 100

func (s *Server) handleGetItems(w http.ResponseWriter, r *http.Request) {
	ids := util.SplitList(r.URL.Query().Get("ids"))
	if len(ids) == 0 {
		s.handleError(w, r, &ValidationError{Fields: map[string]string{"ids": "is required"}})
		return
	}
	if len(ids) > maxItemsPerRequest {
		s.handleError(w, r, &ValidationError{Fields: map[string]string{"ids": "must be at most 100"}})
		return
	}

	items, err := s.store.GetItemsByIDs(r.Context(), ids)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items, s.logger)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := stringParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	item, err := s.store.GetItemByID(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, item, s.logger)
}

type lookupSeriesRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1,max=100,dive,required"`
}

func (s *Server) handleLookupSeries(w http.ResponseWriter, r *http.Request) {
	var req lookupSeriesRequest
	if err := s.decode(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	seriesIDs, err := s.store.GetSeriesIDsByItemIDs(r.Context(), req.ItemIDs)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"series_ids": seriesIDs}, s.logger)
}

func (s *Server) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	id, err := stringParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	series, err := s.store.GetSeriesByID(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, series, s.logger)
}

func (s *Server) handleGetSeriesItems(w http.ResponseWriter, r *http.Request) {
	id, err := stringParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	itemIDs, err := s.store.GetItemIDsBySeriesID(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"item_ids": itemIDs}, s.logger)
}
