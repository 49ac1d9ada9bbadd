package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"quill/app/repositories"
	"quill/app/services"

	"github.com/gorilla/mux"
)

// Helper functions for consistent response handling

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, message string, status int) {
	sendJSON(w, status, map[string]string{"error": message})
}

// sendServiceError maps a service or repository error to its HTTP status.
func sendServiceError(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		sendJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, repositories.ErrNotFound):
		sendError(w, "not found", http.StatusNotFound)
	case errors.Is(err, services.ErrUnauthorized):
		sendError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, services.ErrForbidden):
		sendError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, repositories.ErrConflict):
		sendError(w, err.Error(), http.StatusConflict)
	default:
		sendError(w, "internal server error", http.StatusInternalServerError)
	}
}

func pathID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	return id, err == nil
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
