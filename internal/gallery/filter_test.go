package gallery

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/models"
)

func testProducts() []models.Product {
	return []models.Product{
		{ID: "1", Category: "eggs", Price: decimal.RequireFromString("12.99"), Rating: 4.2},
		{ID: "2", Category: "eggs", Price: decimal.RequireFromString("10.99"), Rating: 4.0},
		{ID: "3", Category: "dairy", Price: decimal.RequireFromString("4.49"), Rating: 4.5},
		{ID: "4", Category: "bakery", Price: decimal.RequireFromString("10.99"), Rating: 2.5},
		{ID: "5", Category: "dairy", Price: decimal.RequireFromString("54.00"), Rating: 3.0},
	}
}

func ids(ps []models.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestApply_DefaultFilterKeepsEverything(t *testing.T) {
	ps := testProducts()
	assert.Equal(t, ids(ps), ids(Apply(ps, DefaultFilter())))
}

func TestApply_Predicates(t *testing.T) {
	tests := []struct {
		name   string
		filter func(f *Filter)
		want   []string
	}{
		{name: "category", filter: func(f *Filter) { f.Categories = []string{"dairy"} }, want: []string{"3", "5"}},
		{name: "several categories", filter: func(f *Filter) { f.Categories = []string{"bakery", "eggs"} }, want: []string{"1", "2", "4"}},
		{name: "price ceiling inclusive", filter: func(f *Filter) { f.MaxPrice = decimal.RequireFromString("10.99") }, want: []string{"2", "3", "4"}},
		{name: "price floor", filter: func(f *Filter) { f.MinPrice = decimal.NewFromInt(11) }, want: []string{"1", "5"}},
		{name: "min rating inclusive", filter: func(f *Filter) { f.MinRating = 4 }, want: []string{"1", "2", "3"}},
		{name: "combined", filter: func(f *Filter) {
			f.Categories = []string{"eggs", "dairy"}
			f.MaxPrice = decimal.NewFromInt(12)
			f.MinRating = 4.1
		}, want: []string{"3"}},
		{name: "nothing matches", filter: func(f *Filter) { f.Categories = []string{"toys"} }, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := DefaultFilter()
			tt.filter(&f)
			assert.Equal(t, tt.want, ids(Apply(testProducts(), f)))
		})
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	ps := testProducts()
	before := ids(ps)

	asc := Sort(ps, SortPriceAsc)
	assert.Equal(t, []string{"3", "2", "4", "1", "5"}, ids(asc))

	desc := Sort(ps, SortPriceDesc)
	assert.Equal(t, []string{"5", "1", "2", "4", "3"}, ids(desc))

	assert.Equal(t, before, ids(Sort(ps, SortCatalog)))
	assert.Equal(t, before, ids(ps))
}

func TestParseSortMode(t *testing.T) {
	m, err := ParseSortMode("Price-Low")
	require.NoError(t, err)
	assert.Equal(t, SortPriceAsc, m)

	m, err = ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortCatalog, m)

	_, err = ParseSortMode("rating")
	assert.Error(t, err)
}

type stubSearcher struct {
	ids []string
	err error
}

func (s stubSearcher) Search(context.Context, string) ([]string, error) { return s.ids, s.err }

func TestView_Browse(t *testing.T) {
	c, err := catalog.New(testProducts())
	require.NoError(t, err)
	ctx := context.Background()

	v := &View{Source: c, Searcher: stubSearcher{ids: []string{"5", "1", "3"}}}

	f := DefaultFilter()
	f.Query = "anything"
	f.Categories = []string{"dairy", "eggs"}
	got, err := v.Browse(ctx, f, SortPriceAsc)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1", "5"}, ids(got))

	got, err = v.Browse(ctx, DefaultFilter(), SortCatalog)
	require.NoError(t, err)
	assert.Equal(t, ids(testProducts()), ids(got))

	v.Searcher = stubSearcher{err: errors.New("es down")}
	_, err = v.Browse(ctx, f, SortCatalog)
	assert.Error(t, err)
}

func TestView_BrowseWithCatalogSearch(t *testing.T) {
	c, err := catalog.Load()
	require.NoError(t, err)

	v := &View{Source: c, Searcher: c}
	f := DefaultFilter()
	f.Query = "sourdough"

	got, err := v.Browse(context.Background(), f, SortCatalog)
	require.NoError(t, err)
	assert.Equal(t, []string{"8"}, ids(got))
}
