package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/gallery"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

type ProductHTTP struct {
	Catalog *catalog.Catalog
	View    *gallery.View
}

func NewProductHTTP(cat *catalog.Catalog, searcher gallery.Searcher) *ProductHTTP {
	if searcher == nil {
		searcher = cat
	}
	return &ProductHTTP{
		Catalog: cat,
		View:    &gallery.View{Source: cat, Searcher: searcher},
	}
}

func (h *ProductHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "list.products")

	f, err := parseFilter(c)
	if err != nil {
		l.Warn("list_products_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	mode, err := gallery.ParseSortMode(c.QueryParam("sort"))
	if err != nil {
		l.Warn("list_products_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	products, err := h.View.Browse(ctx, f, mode)
	if err != nil {
		l.Error("list_products_error", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "search unavailable")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	w := util.Paginate(page, size, len(products))

	items := append([]models.Product{}, products[w.From:w.To]...)

	return c.JSON(http.StatusOK, transport.ProductListResponse{
		Total: len(products),
		Page:  w.Page,
		Size:  w.Size,
		Items: items,
	})
}

func (h *ProductHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get.product")

	id := c.Param("id")
	p, ok := h.Catalog.Product(id)
	if !ok {
		l.Warn("get_product_error", "status", 404, "id", id)
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	return c.JSON(http.StatusOK, transport.ProductDetailResponse{
		Product: p,
		Related: h.Catalog.Related(id),
	})
}

func (h *ProductHTTP) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.CategoriesResponse{Categories: h.Catalog.Categories()})
}

// parseFilter reads the gallery controls. category may repeat or be a
// comma separated list; search is the header search box.
func parseFilter(c echo.Context) (gallery.Filter, error) {
	f := gallery.DefaultFilter()

	for _, raw := range c.QueryParams()["category"] {
		for _, cat := range strings.Split(raw, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				f.Categories = append(f.Categories, cat)
			}
		}
	}

	if v := c.QueryParam("min_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, errors.New("invalid min_price")
		}
		f.MinPrice = d
	}
	if v := c.QueryParam("max_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, errors.New("invalid max_price")
		}
		f.MaxPrice = d
	}
	if v := c.QueryParam("min_rating"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, errors.New("invalid min_rating")
		}
		f.MinRating = r
	}

	f.Query = c.QueryParam("search")
	return f, nil
}
