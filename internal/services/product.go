package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/catalogo-api/apiserver/internal/storage"
	"github.com/catalogo-api/apiserver/internal/store"
	"github.com/catalogo-api/apiserver/types"
	"github.com/sirupsen/logrus"
)

// ProductService encapsulates product use-cases.
type ProductService struct {
	sessions SessionFactory
	storage  *storage.Storage
	events   eventNotifier
	logger   logrus.FieldLogger
}

// NewProductService constructs the service. images may be nil, which
// disables picture uploads.
func NewProductService(sessions SessionFactory, images *storage.Storage, publisher EventPublisher, logger logrus.FieldLogger) *ProductService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ProductService{
		sessions: sessions,
		storage:  images,
		events:   newEventNotifier(publisher, logger),
		logger:   logger,
	}
}

func (s *ProductService) List(ctx context.Context) ([]types.Product, error) {
	var products []types.Product
	err := inSession(ctx, s.sessions, func(sess Session) error {
		var err error
		products, err = sess.Products().List(ctx)
		return err
	})
	return products, err
}

func (s *ProductService) Get(ctx context.Context, id int) (types.Product, error) {
	var product types.Product
	err := inSession(ctx, s.sessions, func(sess Session) error {
		var err error
		product, err = sess.Products().Get(ctx, id)
		return err
	})
	return product, err
}

// Create inserts the product. Any id in the input is ignored.
func (s *ProductService) Create(ctx context.Context, product types.Product) (types.Product, error) {
	product.ID = 0

	var created types.Product
	err := inSession(ctx, s.sessions, func(sess Session) error {
		var err error
		created, err = sess.Products().Create(ctx, product)
		if err != nil {
			return err
		}
		return sess.Commit()
	})
	if err != nil {
		return types.Product{}, err
	}

	s.events.notify(ctx, types.EntityProduct, types.ActionCreated, created.ID, created)
	return created, nil
}

// Update replaces every mutable field of the stored product with the
// values from the input. An uploaded picture that is no longer referenced
// is removed after the commit.
func (s *ProductService) Update(ctx context.Context, id int, product types.Product) (types.Product, error) {
	if product.ID != id {
		return types.Product{}, ErrIDMismatch
	}

	var (
		updated  types.Product
		previous string
	)
	err := inSession(ctx, s.sessions, func(sess Session) error {
		repo := sess.Products()
		current, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}

		previous = current.Image
		current.Name = product.Name
		current.Description = product.Description
		current.Stock = product.Stock
		current.Price = product.Price
		current.Image = product.Image
		current.PurchaseDate = product.PurchaseDate
		current.CategoryID = product.CategoryID

		updated, err = repo.Update(ctx, current)
		if err != nil {
			return err
		}
		return sess.Commit()
	})
	if err != nil {
		return types.Product{}, err
	}

	if previous != updated.Image {
		s.removeImage(ctx, id, previous)
	}
	s.events.notify(ctx, types.EntityProduct, types.ActionUpdated, updated.ID, updated)
	return updated, nil
}

// Delete removes the product and returns it as it was before deletion.
func (s *ProductService) Delete(ctx context.Context, id int) (types.Product, error) {
	var deleted types.Product
	err := inSession(ctx, s.sessions, func(sess Session) error {
		var err error
		deleted, err = sess.Products().Delete(ctx, id)
		if err != nil {
			return err
		}
		return sess.Commit()
	})
	if err != nil {
		return types.Product{}, err
	}

	s.removeImage(ctx, id, deleted.Image)
	s.events.notify(ctx, types.EntityProduct, types.ActionDeleted, deleted.ID, deleted)
	return deleted, nil
}

// SetImage uploads data as the product's picture and points Image at it.
// The previous picture is removed if it was uploaded the same way.
func (s *ProductService) SetImage(ctx context.Context, id int, filename string, data []byte) (types.Product, error) {
	if s.storage == nil {
		return types.Product{}, ErrImageStorageDisabled
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return types.Product{}, ErrInvalidImage
	}

	var (
		updated  types.Product
		previous string
		key      string
	)
	err := inSession(ctx, s.sessions, func(sess Session) error {
		repo := sess.Products()
		current, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}

		key = storage.ProductImageKey(id, imageExtension(filename, contentType))
		if err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
			key = ""
			return err
		}

		previous = current.Image
		current.Image = key
		updated, err = repo.Update(ctx, current)
		if err != nil {
			return err
		}
		return sess.Commit()
	})
	if err != nil {
		if key != "" {
			s.removeImage(ctx, id, key)
		}
		return types.Product{}, err
	}

	s.removeImage(ctx, id, previous)
	s.events.notify(ctx, types.EntityProduct, types.ActionUpdated, updated.ID, updated)
	return updated, nil
}

// OpenImage returns a reader over the product's uploaded picture and its
// content type. The caller closes the reader.
func (s *ProductService) OpenImage(ctx context.Context, id int) (io.ReadCloser, string, error) {
	if s.storage == nil {
		return nil, "", ErrImageStorageDisabled
	}

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !storage.IsProductImageKey(id, product.Image) {
		return nil, "", store.ErrNotFound
	}

	reader, err := s.storage.Get(ctx, product.Image)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, "", store.ErrNotFound
		}
		return nil, "", err
	}

	contentType := mime.TypeByExtension(path.Ext(product.Image))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return reader, contentType, nil
}

// removeImage deletes key only when it belongs to productID.
func (s *ProductService) removeImage(ctx context.Context, productID int, key string) {
	if s.storage == nil || !storage.IsProductImageKey(productID, key) {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("failed to remove product image")
	}
}

func imageExtension(filename, contentType string) string {
	ext := strings.ToLower(path.Ext(filename))
	if strings.HasPrefix(mime.TypeByExtension(ext), "image/") {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
