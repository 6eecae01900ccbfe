package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CartHTTP struct {
	Sessions Sessions
	Catalog  *catalog.Catalog
}

func cartView(s *cart.Store) transport.CartResponse {
	items := s.Items()
	total := cart.Sum(items)
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return transport.CartResponse{
		Items:        items,
		Count:        n,
		Total:        total,
		TotalDisplay: checkout.FormatPrice(total),
	}
}

func (h *CartHTTP) Get(c echo.Context) error {
	sess, err := currentSession(c, h.Sessions)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cartView(sess.Cart))
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "add.cart.item")

	sess, err := currentSession(c, h.Sessions)
	if err != nil {
		return err
	}

	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_cart_item_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == "" {
		l.Warn("add_cart_item_error", "status", 400, "error", "missing product_id")
		return echo.NewHTTPError(http.StatusBadRequest, "product_id required")
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	p, ok := h.Catalog.Product(req.ProductID)
	if !ok {
		l.Warn("add_cart_item_error", "status", 404, "product_id", req.ProductID)
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	if err := sess.Cart.AddItem(ctx, p, qty); err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			l.Warn("add_cart_item_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("add_cart_item_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	l.Info("cart_item_added", "product_id", p.ID, "quantity", qty)
	return c.JSON(http.StatusCreated, cartView(sess.Cart))
}

func (h *CartHTTP) GetItem(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "get.cart.item")

	sess, err := currentSession(c, h.Sessions)
	if err != nil {
		return err
	}

	id := c.Param("id")
	it, ok := sess.Cart.Item(id)
	if !ok {
		l.Warn("get_cart_item_error", "status", 404, "id", id)
		return echo.NewHTTPError(http.StatusNotFound, "item not in cart")
	}
	return c.JSON(http.StatusOK, it)
}

func (h *CartHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update.cart.item")

	sess, err := currentSession(c, h.Sessions)
	if err != nil {
		return err
	}

	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		l.Warn("update_cart_item_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "quantity required")
	}

	id := c.Param("id")
	if err := sess.Cart.UpdateQuantity(ctx, id, *req.Quantity); err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			l.Warn("update_cart_item_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("update_cart_item_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, cartView(sess.Cart))
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "remove.cart.item")

	sess, err := currentSession(c, h.Sessions)
	if err != nil {
		return err
	}

	if err := sess.Cart.RemoveItem(ctx, c.Param("id")); err != nil {
		l.Error("remove_cart_item_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, cartView(sess.Cart))
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "clear.cart")

	sess, err := currentSession(c, h.Sessions)
	if err != nil {
		return err
	}

	if err := sess.Cart.Clear(ctx); err != nil {
		l.Error("clear_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	l.Info("cart successfully cleared")
	return c.JSON(http.StatusOK, cartView(sess.Cart))
}
