package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/catalogo-api/apiserver/internal/services"
	"github.com/catalogo-api/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const (
	productEntity      = "product"
	formFieldImage     = "imagem"
	maxMultipartMemory = 8 << 20
	maxImageBytes      = 10 << 20
)

// ProductHandler provides HTTP handlers for products.
type ProductHandler struct {
	service *services.ProductService
	logger  logrus.FieldLogger
}

func NewProductHandler(service *services.ProductService, logger logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{service: service, logger: logger}
}

// ProductRouter registers product routes on the given router. Callers are
// expected to mount it behind RequireAuth.
func ProductRouter(r chi.Router, service *services.ProductService, logger logrus.FieldLogger) {
	handler := NewProductHandler(service, logger)

	r.Get("/", handler.ListProducts)
	r.Post("/", handler.CreateProduct)
	r.Route(idPattern, func(r chi.Router) {
		r.Get("/", handler.GetProduct)
		r.Put("/", handler.UpdateProduct)
		r.Delete("/", handler.DeleteProduct)
		r.Put("/imagem", handler.UploadImage)
		r.Get("/imagem", handler.DownloadImage)
	})
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, productEntity, 0, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, productEntity, id, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	product, err := decodeBody[types.Product](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product")
		return
	}

	created, err := h.service.Create(r.Context(), product)
	if err != nil {
		writeServiceError(w, r, h.logger, productEntity, 0, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/produtos/%d", created.ID))
	writeJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	product, err := decodeBody[types.Product](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product")
		return
	}

	updated, err := h.service.Update(r.Context(), id, product)
	if err != nil {
		writeServiceError(w, r, h.logger, productEntity, id, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, productEntity, id, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}

// UploadImage stores the multipart field "imagem" as the product picture.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	filename, data, err := readImageFile(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.SetImage(r.Context(), id, filename, data)
	if err != nil {
		writeServiceError(w, r, h.logger, productEntity, id, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) DownloadImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	reader, contentType, err := h.service.OpenImage(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, productEntity, id, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.WithError(err).WithField("product_id", id).Warn("failed to stream product image")
	}
}

func readImageFile(form *multipart.Form) (string, []byte, error) {
	if form == nil {
		return "", nil, errors.New("missing form data")
	}

	files := form.File[formFieldImage]
	if len(files) == 0 {
		return "", nil, errors.New("image file is required")
	}
	if len(files) > 1 {
		return "", nil, errors.New("only one image file is allowed")
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to read image file: %w", err)
	}
	defer file.Close()

	data, err := readFileLimited(file, maxImageBytes)
	if err != nil {
		return "", nil, err
	}
	return fileHeader.Filename, data, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	if len(data) == 0 {
		return nil, errors.New("uploaded file is empty")
	}
	return data, nil
}
