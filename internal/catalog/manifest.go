// Package catalog resuelve las imágenes de producto desde un manifiesto estático.
package catalog

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"grocery-mart/internal/models"
)

type Entry struct {
	ImageURL string   `yaml:"image_url"`
	Images   []string `yaml:"images"`
}

// Manifest mapea id de producto a sus assets
type Manifest struct {
	Placeholder string           `yaml:"placeholder"`
	Products    map[string]Entry `yaml:"products"`
}

// Load lee el manifiesto; una ruta vacía da un manifiesto vacío
func Load(path string) (*Manifest, error) {
	m := &Manifest{Products: map[string]Entry{}}
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image manifest: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing image manifest: %w", err)
	}
	if m.Products == nil {
		m.Products = map[string]Entry{}
	}
	return m, nil
}

func (m *Manifest) Resolve(productID string) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	e, ok := m.Products[productID]
	return e, ok
}

func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Products)
}

// Apply completa las imágenes del producto; los valores ya presentes no se pisan
func (m *Manifest) Apply(p *models.Product) {
	if m == nil || p == nil {
		return
	}
	if e, ok := m.Resolve(p.ID.Hex()); ok {
		if p.ImageURL == "" {
			p.ImageURL = e.ImageURL
		}
		if len(p.Images) == 0 && len(e.Images) > 0 {
			p.Images = append([]string(nil), e.Images...)
		}
	}
	if p.ImageURL == "" && len(p.Images) > 0 {
		p.ImageURL = p.Images[0]
	}
	if p.ImageURL == "" {
		p.ImageURL = m.Placeholder
	}
}
