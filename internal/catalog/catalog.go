// Package catalog serves the read-only product list and the product detail
// view (one product plus its hand-picked related items).
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
)

//go:embed catalog.json
var fixture []byte

var ErrInvalidProduct = errors.New("invalid product")

type Catalog struct {
	products []models.Product
	byID     map[string]int
}

// Load returns the embedded catalog.
func Load() (*Catalog, error) {
	var products []models.Product
	if err := json.Unmarshal(fixture, &products); err != nil {
		return nil, fmt.Errorf("catalog: decode fixture: %w", err)
	}
	return New(products)
}

func New(products []models.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]models.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for _, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog: empty id: %w", ErrInvalidProduct)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate id %s: %w", p.ID, ErrInvalidProduct)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("catalog: %s has negative price: %w", p.ID, ErrInvalidProduct)
		}
		if p.Rating < 0 || p.Rating > 5 {
			return nil, fmt.Errorf("catalog: %s rating out of range: %w", p.ID, ErrInvalidProduct)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// All returns a copy in catalog order.
func (c *Catalog) All() []models.Product {
	return slices.Clone(c.products)
}

func (c *Catalog) Product(id string) (models.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Product{}, false
	}
	return c.products[i], true
}

// Related resolves the product's related ids, skipping unknown ones.
func (c *Catalog) Related(id string) []models.Product {
	p, ok := c.Product(id)
	if !ok {
		return nil
	}
	out := make([]models.Product, 0, len(p.Related))
	for _, rid := range p.Related {
		if rid == id {
			continue
		}
		if r, ok := c.Product(rid); ok {
			out = append(out, r)
		}
	}
	return out
}

func (c *Catalog) Categories() []string {
	var out []string
	for _, p := range c.products {
		if p.Category != "" && !slices.Contains(out, p.Category) {
			out = append(out, p.Category)
		}
	}
	return out
}

// Search matches the query against name and description, case-insensitively.
func (c *Catalog) Search(_ context.Context, query string) ([]string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}
	var ids []string
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}
