// Package gallery filters and sorts catalog snapshots. Everything is
// recomputed from scratch per request; catalogs are small.
package gallery

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

type SortMode string

const (
	SortCatalog   SortMode = ""
	SortPriceAsc  SortMode = "price-low"
	SortPriceDesc SortMode = "price-high"
)

func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case SortCatalog, SortPriceAsc, SortPriceDesc:
		return m, nil
	default:
		return SortCatalog, fmt.Errorf("unknown sort mode %q", s)
	}
}

var DefaultMaxPrice = decimal.NewFromInt(1000)

type Filter struct {
	Categories []string
	MinPrice   decimal.Decimal
	MaxPrice   decimal.Decimal
	MinRating  float64
	Query      string
}

func DefaultFilter() Filter {
	return Filter{
		MinPrice: decimal.Zero,
		MaxPrice: DefaultMaxPrice,
	}
}

func (f Filter) Match(p models.Product) bool {
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, p.Category) {
		return false
	}
	if p.Price.LessThan(f.MinPrice) || p.Price.GreaterThan(f.MaxPrice) {
		return false
	}
	return p.Rating >= f.MinRating
}

// Apply keeps the products matching f, preserving their order. The query
// is resolved separately by a Searcher.
func Apply(products []models.Product, f Filter) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Sort returns a sorted copy; the input slice is left untouched.
func Sort(products []models.Product, mode SortMode) []models.Product {
	out := slices.Clone(products)
	switch mode {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b models.Product) int { return a.Price.Cmp(b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b models.Product) int { return b.Price.Cmp(a.Price) })
	}
	return out
}

type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

type Source interface {
	All() []models.Product
}

type View struct {
	Source   Source
	Searcher Searcher
}

// Browse narrows the catalog by the free-text query (when set), applies the
// predicate filter, then sorts.
func (v *View) Browse(ctx context.Context, f Filter, mode SortMode) ([]models.Product, error) {
	products := v.Source.All()

	if q := strings.TrimSpace(f.Query); q != "" && v.Searcher != nil {
		ids, err := v.Searcher.Search(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", q, err)
		}
		hit := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			hit[id] = struct{}{}
		}
		products = slices.DeleteFunc(products, func(p models.Product) bool {
			_, ok := hit[p.ID]
			return !ok
		})
	}

	return Sort(Apply(products, f), mode), nil
}
