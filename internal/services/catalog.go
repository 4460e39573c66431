package services

import (
	"fmt"
	"os"

	"github.com/revuai/revuchat/internal/models"
	"gopkg.in/yaml.v3"
)

// Catalog holds the products the assistant server can be asked about, loaded
// once at startup from a YAML seed file.
type Catalog struct {
	products map[string]models.Product
}

type catalogFile struct {
	Products []models.Product `yaml:"products"`
}

// LoadCatalog reads a YAML catalog file and indexes its products by ID.
func LoadCatalog(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	var cf catalogFile
	if err := yaml.NewDecoder(f).Decode(&cf); err != nil {
		return Catalog{}, fmt.Errorf("failed to decode catalog file: %w", err)
	}

	products := make(map[string]models.Product, len(cf.Products))
	for _, p := range cf.Products {
		if p.ID == "" {
			return Catalog{}, fmt.Errorf("catalog product %q has no id", p.Name)
		}
		if p.ReviewCount == 0 {
			p.ReviewCount = len(p.Reviews)
		}
		products[p.ID] = p
	}

	return Catalog{products: products}, nil
}

// Product returns the catalog entry with the given ID.
func (c Catalog) Product(id string) (models.Product, bool) {
	p, ok := c.products[id]
	return p, ok
}

// Len returns the number of products in the catalog.
func (c Catalog) Len() int {
	return len(c.products)
}
