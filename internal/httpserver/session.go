package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/profile"
	"github.com/Skotchmaster/storefront/internal/session"
)

type Sessions interface {
	Get(ctx context.Context, profile string) (*session.Session, error)
}

var errNoProfile = errors.New("no profile on request")

// currentSession resolves the session of the profile attached by the
// profile middleware.
func currentSession(c echo.Context, sessions Sessions) (*session.Session, error) {
	ctx := c.Request().Context()
	id, ok := profile.FromContext(c)
	if !ok {
		logging.FromContext(ctx).Error("session_error", "status", 500, "error", errNoProfile)
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	s, err := sessions.Get(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Error("session_error", "status", 500, "error", err)
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return s, nil
}
