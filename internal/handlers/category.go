package handlers

import (
	"fmt"
	"net/http"

	"github.com/catalogo-api/apiserver/internal/services"
	"github.com/catalogo-api/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const categoryEntity = "category"

// CategoryHandler provides HTTP handlers for categories.
type CategoryHandler struct {
	service *services.CategoryService
	logger  logrus.FieldLogger
}

func NewCategoryHandler(service *services.CategoryService, logger logrus.FieldLogger) *CategoryHandler {
	return &CategoryHandler{service: service, logger: logger}
}

// CategoryRouter registers category routes on the given router. Callers
// are expected to mount it behind RequireAuth.
func CategoryRouter(r chi.Router, service *services.CategoryService, logger logrus.FieldLogger) {
	handler := NewCategoryHandler(service, logger)

	r.Get("/", handler.ListCategories)
	r.Post("/", handler.CreateCategory)
	r.Get(idPattern, handler.GetCategory)
	r.Put(idPattern, handler.UpdateCategory)
	r.Delete(idPattern, handler.DeleteCategory)
}

func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, categoryEntity, 0, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	category, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, categoryEntity, id, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	category, err := decodeBody[types.Category](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}

	created, err := h.service.Create(r.Context(), category)
	if err != nil {
		writeServiceError(w, r, h.logger, categoryEntity, 0, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/categorias/%d", created.ID))
	writeJSON(w, http.StatusCreated, created)
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	category, err := decodeBody[types.Category](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}

	if _, err := h.service.Update(r.Context(), id, category); err != nil {
		writeServiceError(w, r, h.logger, categoryEntity, id, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("category id=%d updated", id),
	})
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, categoryEntity, id, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}
