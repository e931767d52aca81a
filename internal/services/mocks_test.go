package services

import (
	"context"
	"io"

	"github.com/catalogo-api/apiserver/types"
	"github.com/stretchr/testify/mock"
)

type mockCategoryRepository struct {
	mock.Mock
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]types.Category, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]types.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCategoryRepository) Get(ctx context.Context, id int) (types.Category, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.Category), args.Error(1)
}

func (m *mockCategoryRepository) Create(ctx context.Context, category types.Category) (types.Category, error) {
	args := m.Called(ctx, category)
	return args.Get(0).(types.Category), args.Error(1)
}

func (m *mockCategoryRepository) Update(ctx context.Context, category types.Category) (types.Category, error) {
	args := m.Called(ctx, category)
	return args.Get(0).(types.Category), args.Error(1)
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id int) (types.Category, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.Category), args.Error(1)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) List(ctx context.Context) ([]types.Product, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]types.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepository) Get(ctx context.Context, id int) (types.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.Product), args.Error(1)
}

func (m *mockProductRepository) Create(ctx context.Context, product types.Product) (types.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(types.Product), args.Error(1)
}

func (m *mockProductRepository) Update(ctx context.Context, product types.Product) (types.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(types.Product), args.Error(1)
}

func (m *mockProductRepository) Delete(ctx context.Context, id int) (types.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.Product), args.Error(1)
}

// mockSession hands out the same repositories and records Commit/Close.
type mockSession struct {
	mock.Mock
	categories *mockCategoryRepository
	products   *mockProductRepository
}

func newMockSession() *mockSession {
	return &mockSession{
		categories: new(mockCategoryRepository),
		products:   new(mockProductRepository),
	}
}

func (m *mockSession) Categories() CategoryRepository { return m.categories }
func (m *mockSession) Products() ProductRepository    { return m.products }

func (m *mockSession) Commit() error {
	return m.Called().Error(0)
}

func (m *mockSession) Close() error {
	return m.Called().Error(0)
}

func (m *mockSession) factory() SessionFactory {
	return func(context.Context) (Session, error) {
		return m, nil
	}
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event types.Event) error {
	return m.Called(ctx, event).Error(0)
}

type mockObjectStorage struct {
	mock.Mock
}

func (m *mockObjectStorage) EnsureBucket(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockObjectStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return m.Called(ctx, key, r, size, contentType).Error(0)
}

func (m *mockObjectStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if res := args.Get(0); res != nil {
		return res.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockObjectStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockObjectStorage) Bucket() string {
	return m.Called().String(0)
}
