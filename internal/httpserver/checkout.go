package httpserver

import (
	"errors"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/transport"
)

var formFields = []checkout.Field{
	checkout.FieldName,
	checkout.FieldEmail,
	checkout.FieldPhone,
	checkout.FieldAddress,
	checkout.FieldCity,
	checkout.FieldZip,
	checkout.FieldCountry,
	checkout.FieldPaymentMethod,
}

type CheckoutHTTP struct {
	Sessions Sessions
}

func (h *CheckoutHTTP) Get(c echo.Context) error {
	sess, err := currentSession(c, h.Sessions)
	if err != nil {
		return err
	}

	items, totals := sess.Checkout.Summary()
	return c.JSON(http.StatusOK, transport.CheckoutResponse{
		Items:      items,
		Totals:     checkout.Display(totals),
		Submitting: sess.Checkout.Submitting(),
	})
}

func (h *CheckoutHTTP) ValidateField(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "validate.checkout.field")

	var req transport.ValidateFieldRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("validate_field_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	field := checkout.Field(req.Field)
	if !slices.Contains(formFields, field) {
		l.Warn("validate_field_error", "status", 400, "field", req.Field)
		return echo.NewHTTPError(http.StatusBadRequest, "unknown field")
	}

	msg := checkout.ValidateField(field, req.Value)
	return c.JSON(http.StatusOK, transport.ValidateFieldResponse{
		Field: req.Field,
		Valid: msg == "",
		Error: msg,
	})
}

func (h *CheckoutHTTP) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "submit.checkout")

	sess, err := currentSession(c, h.Sessions)
	if err != nil {
		return err
	}

	var form checkout.Form
	if err := c.Bind(&form); err != nil {
		l.Warn("submit_checkout_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	conf, err := sess.Checkout.Submit(ctx, form)
	if err != nil {
		var verr *checkout.ValidationError
		switch {
		case errors.As(err, &verr):
			l.Warn("submit_checkout_error", "status", 422, "error", err)
			return c.JSON(http.StatusUnprocessableEntity, transport.ValidationErrorResponse{
				Message: "please correct the highlighted fields",
				Errors:  verr.Fields,
			})
		case errors.Is(err, checkout.ErrEmptyCart):
			l.Warn("submit_checkout_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, checkout.ErrSubmissionInProgress):
			l.Warn("submit_checkout_error", "status", 409, "error", err)
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, checkout.ErrSubmissionFailed):
			l.Error("submit_checkout_error", "status", 502, "error", err)
			return echo.NewHTTPError(http.StatusBadGateway, "There was an error processing your order. Please try again.")
		}
		l.Error("submit_checkout_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusCreated, conf)
}
