package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/catalogo-api/apiserver/internal/services"
	"github.com/catalogo-api/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// idPattern restricts {id} to digits so other values never reach a handler.
const idPattern = "/{id:[0-9]+}"

type contextKey string

const contextClaimsKey contextKey = "claims"

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// decodeBody decodes a JSON body into dst. A missing or null body is an error.
func decodeBody[T any](r *http.Request) (T, error) {
	var dst *T
	if err := json.NewDecoder(r.Body).Decode(&dst); err != nil {
		var zero T
		return zero, fmt.Errorf("decode body: %w", err)
	}
	if dst == nil {
		var zero T
		return zero, errors.New("empty body")
	}
	return *dst, nil
}

// parseID reads {id} as a 32-bit integer to match the id columns. Values
// outside that range cannot name a stored row.
func parseID(r *http.Request) (int, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		return 0, errors.New("invalid id")
	}
	return int(id), nil
}

// writeServiceError maps service and store errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger logrus.FieldLogger, entity string, id int, err error) {
	switch {
	case errors.Is(err, services.ErrIDMismatch):
		writeError(w, http.StatusBadRequest, "id in path does not match id in body")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s id=%d not found", entity, id))
	case errors.Is(err, store.ErrReferenceViolation):
		writeError(w, http.StatusConflict, "category reference is missing or still in use")
	case errors.Is(err, services.ErrInvalidImage):
		writeError(w, http.StatusBadRequest, "uploaded file is not an image")
	case errors.Is(err, services.ErrImageStorageDisabled):
		writeError(w, http.StatusServiceUnavailable, "image storage is not configured")
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
		}).Error("store failure")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
