package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/catalogo-api/apiserver/internal/storage"
	"github.com/catalogo-api/apiserver/internal/store"
	"github.com/catalogo-api/apiserver/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestProductService_Update(t *testing.T) {
	ctx := context.TODO()

	t.Run("id mismatch", func(t *testing.T) {
		sess := newMockSession()
		svc := NewProductService(sess.factory(), nil, nil, nil)

		_, err := svc.Update(ctx, 4, types.Product{ID: 40, Name: "anything"})
		assert.ErrorIs(t, err, ErrIDMismatch)
		sess.AssertNotCalled(t, "Close")
	})

	t.Run("missing product", func(t *testing.T) {
		sess := newMockSession()
		svc := NewProductService(sess.factory(), nil, nil, nil)

		sess.products.On("Get", ctx, 4).Return(types.Product{}, store.ErrNotFound).Once()
		sess.On("Close").Return(nil).Once()

		_, err := svc.Update(ctx, 4, types.Product{ID: 4})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("overwrites every mutable field", func(t *testing.T) {
		sess := newMockSession()
		svc := NewProductService(sess.factory(), nil, nil, nil)

		stored := types.Product{
			ID:           4,
			Name:         "Old",
			Description:  "Old desc",
			Price:        decimal.RequireFromString("1.00"),
			Stock:        1,
			Image:        "old.png",
			PurchaseDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			CategoryID:   1,
		}
		incoming := types.Product{
			ID:           4,
			Name:         "New",
			Description:  "New desc",
			Price:        decimal.RequireFromString("19.90"),
			Stock:        12,
			Image:        "new.png",
			PurchaseDate: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC),
			CategoryID:   2,
		}

		sess.products.On("Get", ctx, 4).Return(stored, nil).Once()
		sess.products.On("Update", ctx, incoming).Return(incoming, nil).Once()
		sess.On("Commit").Return(nil).Once()
		sess.On("Close").Return(nil).Once()

		updated, err := svc.Update(ctx, 4, incoming)
		require.NoError(t, err)
		assert.Equal(t, incoming, updated)
		sess.AssertExpectations(t)
		sess.products.AssertExpectations(t)
	})
}

func TestProductService_CreateAndDelete(t *testing.T) {
	ctx := context.TODO()
	sess := newMockSession()
	pub := new(mockPublisher)
	svc := NewProductService(sess.factory(), nil, pub, nil)

	price := decimal.RequireFromString("2.50")
	product := types.Product{Name: "Pen", CategoryID: 1, Price: price}
	created := product
	created.ID = 11

	sess.products.On("Create", ctx, product).Return(created, nil).Once()
	sess.products.On("Delete", ctx, 11).Return(created, nil).Once()
	sess.On("Commit").Return(nil).Twice()
	sess.On("Close").Return(nil).Twice()
	pub.On("Publish", ctx, eventFor(types.EntityProduct, types.ActionCreated, 11)).Return(nil).Once()
	pub.On("Publish", ctx, eventFor(types.EntityProduct, types.ActionDeleted, 11)).Return(nil).Once()

	got, err := svc.Create(ctx, types.Product{ID: 500, Name: "Pen", CategoryID: 1, Price: price})
	require.NoError(t, err)
	assert.Equal(t, 11, got.ID)

	deleted, err := svc.Delete(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, created, deleted)

	sess.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestProductService_CreateReferenceViolation(t *testing.T) {
	ctx := context.TODO()
	sess := newMockSession()
	svc := NewProductService(sess.factory(), nil, nil, nil)

	sess.products.On("Create", ctx, mock.Anything).Return(types.Product{}, store.ErrReferenceViolation).Once()
	sess.On("Close").Return(nil).Once()

	_, err := svc.Create(ctx, types.Product{Name: "Orphan", CategoryID: 999})
	assert.ErrorIs(t, err, store.ErrReferenceViolation)
	sess.AssertNotCalled(t, "Commit")
}

func TestProductService_SetImage(t *testing.T) {
	ctx := context.TODO()

	t.Run("storage disabled", func(t *testing.T) {
		svc := NewProductService(newMockSession().factory(), nil, nil, nil)
		_, err := svc.SetImage(ctx, 1, "a.png", pngHeader)
		assert.ErrorIs(t, err, ErrImageStorageDisabled)
	})

	t.Run("rejects non images", func(t *testing.T) {
		backend := new(mockObjectStorage)
		svc := NewProductService(newMockSession().factory(), storage.NewStorage(backend), nil, nil)

		_, err := svc.SetImage(ctx, 1, "a.png", []byte("plain text, not a picture"))
		assert.ErrorIs(t, err, ErrInvalidImage)
		backend.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("uploads and replaces previous picture", func(t *testing.T) {
		sess := newMockSession()
		backend := new(mockObjectStorage)
		svc := NewProductService(sess.factory(), storage.NewStorage(backend), nil, nil)

		isNewKey := mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "produtos/1/") && strings.HasSuffix(key, ".png")
		})

		sess.products.On("Get", ctx, 1).Return(types.Product{ID: 1, Image: "produtos/1/old.png"}, nil).Once()
		backend.On("Put", ctx, isNewKey, mock.Anything, int64(len(pngHeader)), "image/png").Return(nil).Once()
		sess.products.On("Update", ctx, mock.MatchedBy(func(p types.Product) bool {
			return p.ID == 1 && strings.HasPrefix(p.Image, "produtos/1/") && p.Image != "produtos/1/old.png"
		})).Return(types.Product{ID: 1, Image: "produtos/1/new.png"}, nil).Once()
		sess.On("Commit").Return(nil).Once()
		sess.On("Close").Return(nil).Once()
		backend.On("Delete", ctx, "produtos/1/old.png").Return(nil).Once()

		updated, err := svc.SetImage(ctx, 1, "photo.PNG", pngHeader)
		require.NoError(t, err)
		assert.Equal(t, "produtos/1/new.png", updated.Image)

		sess.AssertExpectations(t)
		backend.AssertExpectations(t)
	})

	t.Run("removes upload when update fails", func(t *testing.T) {
		sess := newMockSession()
		backend := new(mockObjectStorage)
		svc := NewProductService(sess.factory(), storage.NewStorage(backend), nil, nil)
		boom := errors.New("db down")

		sess.products.On("Get", ctx, 1).Return(types.Product{ID: 1}, nil).Once()
		backend.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		sess.products.On("Update", ctx, mock.Anything).Return(types.Product{}, boom).Once()
		sess.On("Close").Return(nil).Once()
		backend.On("Delete", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "produtos/1/")
		})).Return(nil).Once()

		_, err := svc.SetImage(ctx, 1, "photo.png", pngHeader)
		assert.ErrorIs(t, err, boom)
		backend.AssertExpectations(t)
	})
}

func TestProductService_OpenImage(t *testing.T) {
	ctx := context.TODO()

	t.Run("external image is not served", func(t *testing.T) {
		sess := newMockSession()
		svc := NewProductService(sess.factory(), storage.NewStorage(new(mockObjectStorage)), nil, nil)

		sess.products.On("Get", ctx, 2).Return(types.Product{ID: 2, Image: "https://cdn/x.png"}, nil).Once()
		sess.On("Close").Return(nil).Once()

		_, _, err := svc.OpenImage(ctx, 2)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("streams stored image", func(t *testing.T) {
		sess := newMockSession()
		backend := new(mockObjectStorage)
		svc := NewProductService(sess.factory(), storage.NewStorage(backend), nil, nil)

		sess.products.On("Get", ctx, 2).Return(types.Product{ID: 2, Image: "produtos/2/abc.png"}, nil).Once()
		sess.On("Close").Return(nil).Once()
		backend.On("Get", ctx, "produtos/2/abc.png").Return(io.NopCloser(strings.NewReader("png-bytes")), nil).Once()

		reader, contentType, err := svc.OpenImage(ctx, 2)
		require.NoError(t, err)
		defer reader.Close()

		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))
		assert.Equal(t, "image/png", contentType)
	})

	t.Run("missing object", func(t *testing.T) {
		sess := newMockSession()
		backend := new(mockObjectStorage)
		svc := NewProductService(sess.factory(), storage.NewStorage(backend), nil, nil)

		sess.products.On("Get", ctx, 2).Return(types.Product{ID: 2, Image: "produtos/2/gone.png"}, nil).Once()
		sess.On("Close").Return(nil).Once()
		backend.On("Get", ctx, "produtos/2/gone.png").Return(nil, storage.ErrObjectNotFound).Once()

		_, _, err := svc.OpenImage(ctx, 2)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestImageExtension(t *testing.T) {
	assert.Equal(t, ".png", imageExtension("photo.PNG", "image/png"))
	assert.Equal(t, ".gif", imageExtension("", "image/gif"))
	assert.NotEqual(t, ".exe", imageExtension("evil.exe", "image/png"))
}

func TestProductService_ImageCleanupIsScopedToOwner(t *testing.T) {
	ctx := context.TODO()

	t.Run("delete keeps another product's picture", func(t *testing.T) {
		sess := newMockSession()
		backend := new(mockObjectStorage)
		svc := NewProductService(sess.factory(), storage.NewStorage(backend), nil, nil)

		sess.products.On("Delete", ctx, 2).Return(types.Product{ID: 2, Image: "produtos/1/aaaa.png"}, nil).Once()
		sess.On("Commit").Return(nil).Once()
		sess.On("Close").Return(nil).Once()

		_, err := svc.Delete(ctx, 2)
		require.NoError(t, err)
		backend.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("delete removes its own picture", func(t *testing.T) {
		sess := newMockSession()
		backend := new(mockObjectStorage)
		svc := NewProductService(sess.factory(), storage.NewStorage(backend), nil, nil)

		sess.products.On("Delete", ctx, 2).Return(types.Product{ID: 2, Image: "produtos/2/bbbb.png"}, nil).Once()
		sess.On("Commit").Return(nil).Once()
		sess.On("Close").Return(nil).Once()
		backend.On("Delete", ctx, "produtos/2/bbbb.png").Return(nil).Once()

		_, err := svc.Delete(ctx, 2)
		require.NoError(t, err)
		backend.AssertExpectations(t)
	})

	t.Run("upload keeps another product's picture", func(t *testing.T) {
		sess := newMockSession()
		backend := new(mockObjectStorage)
		svc := NewProductService(sess.factory(), storage.NewStorage(backend), nil, nil)

		sess.products.On("Get", ctx, 2).Return(types.Product{ID: 2, Image: "produtos/1/aaaa.png"}, nil).Once()
		backend.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		sess.products.On("Update", ctx, mock.Anything).Return(types.Product{ID: 2, Image: "produtos/2/new.png"}, nil).Once()
		sess.On("Commit").Return(nil).Once()
		sess.On("Close").Return(nil).Once()

		_, err := svc.SetImage(ctx, 2, "photo.png", pngHeader)
		require.NoError(t, err)
		backend.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("download refuses another product's picture", func(t *testing.T) {
		sess := newMockSession()
		backend := new(mockObjectStorage)
		svc := NewProductService(sess.factory(), storage.NewStorage(backend), nil, nil)

		sess.products.On("Get", ctx, 2).Return(types.Product{ID: 2, Image: "produtos/1/aaaa.png"}, nil).Once()
		sess.On("Close").Return(nil).Once()

		_, _, err := svc.OpenImage(ctx, 2)
		assert.ErrorIs(t, err, store.ErrNotFound)
		backend.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestProductService_UpdateRemovesReplacedPicture(t *testing.T) {
	ctx := context.TODO()

	cases := []struct {
		name     string
		stored   string
		incoming string
		removed  bool
	}{
		{"own picture replaced", "produtos/3/old.png", "https://cdn.example.com/new.png", true},
		{"own picture cleared", "produtos/3/old.png", "", true},
		{"own picture kept", "produtos/3/old.png", "produtos/3/old.png", false},
		{"foreign picture replaced", "produtos/1/old.png", "", false},
		{"external picture replaced", "old.png", "new.png", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sess := newMockSession()
			backend := new(mockObjectStorage)
			svc := NewProductService(sess.factory(), storage.NewStorage(backend), nil, nil)

			incoming := types.Product{ID: 3, Name: "Lamp", Image: tc.incoming, CategoryID: 1}
			sess.products.On("Get", ctx, 3).Return(types.Product{ID: 3, Name: "Lamp", Image: tc.stored, CategoryID: 1}, nil).Once()
			sess.products.On("Update", ctx, incoming).Return(incoming, nil).Once()
			sess.On("Commit").Return(nil).Once()
			sess.On("Close").Return(nil).Once()
			if tc.removed {
				backend.On("Delete", ctx, tc.stored).Return(nil).Once()
			}

			_, err := svc.Update(ctx, 3, incoming)
			require.NoError(t, err)
			if tc.removed {
				backend.AssertExpectations(t)
			} else {
				backend.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			}
		})
	}
}
