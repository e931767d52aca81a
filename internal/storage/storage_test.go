package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/catalogo-api/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductImageKey(t *testing.T) {
	key := ProductImageKey(42, "PNG")
	assert.True(t, strings.HasPrefix(key, "produtos/42/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.True(t, IsProductImageKey(42, key))

	assert.NotEqual(t, key, ProductImageKey(42, ".png"))
	assert.False(t, strings.Contains(ProductImageKey(7, ""), "."))
}

func TestIsProductImageKeyRequiresOwner(t *testing.T) {
	key := ProductImageKey(1, ".png")

	assert.True(t, IsProductImageKey(1, key))
	assert.False(t, IsProductImageKey(2, key))
	assert.False(t, IsProductImageKey(11, key))
	assert.False(t, IsProductImageKey(1, "produtos/11/a.png"))
	assert.False(t, IsProductImageKey(1, "produtos/1/"))
	assert.False(t, IsProductImageKey(1, "produtos/1/nested/a.png"))
	assert.False(t, IsProductImageKey(1, "https://cdn.example.com/a.png"))
}

func TestNewDisabled(t *testing.T) {
	var cfg config.Config

	store, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, store)

	cfg.Storage.Backend = "none"
	store, err = New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestNewUnknownBackend(t *testing.T) {
	var cfg config.Config
	cfg.Storage.Backend = "ftp"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewMinioClientValidation(t *testing.T) {
	_, err := NewMinioClient(config.MinioConfig{})
	assert.Error(t, err)

	_, err = NewMinioClient(config.MinioConfig{Endpoint: "localhost:9000", Bucket: "b"})
	assert.Error(t, err)
}
