package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-mart/internal/models"
)

const sample = `
placeholder: /static/placeholder.png
products:
  "64b7f0c2a1b2c3d4e5f60718":
    image_url: /static/milk.png
    images:
      - /static/milk.png
      - /static/milk-back.png
`

func TestLoad_EmptyPath(t *testing.T) {
	m, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "images.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())

	e, ok := m.Resolve("64b7f0c2a1b2c3d4e5f60718")
	require.True(t, ok)
	assert.Equal(t, "/static/milk.png", e.ImageURL)
	assert.Len(t, e.Images, 2)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	m, err := Parse([]byte(sample))
	require.NoError(t, err)

	id, _ := primitive.ObjectIDFromHex("64b7f0c2a1b2c3d4e5f60718")
	known := &models.Product{ID: id}
	m.Apply(known)
	assert.Equal(t, "/static/milk.png", known.ImageURL)
	assert.Len(t, known.Images, 2)

	explicit := &models.Product{ID: id, ImageURL: "/custom.png"}
	m.Apply(explicit)
	assert.Equal(t, "/custom.png", explicit.ImageURL)

	unknown := &models.Product{ID: primitive.NewObjectID()}
	m.Apply(unknown)
	assert.Equal(t, "/static/placeholder.png", unknown.ImageURL)
}
