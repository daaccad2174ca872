package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// int64Param parses the {name} path parameter as a positive id.
func int64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &ValidationError{Fields: map[string]string{name: "must be a positive integer"}}
	}
	return id, nil
}

func stringParam(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return "", &ValidationError{Fields: map[string]string{name: "is required"}}
	}
	return raw, nil
}
