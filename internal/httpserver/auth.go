package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/profile"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AuthHTTP struct {
	Sessions  Sessions
	Publisher events.Publisher
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "login")

	sess, err := currentSession(c, h.Sessions)
	if err != nil {
		return err
	}

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		l.Warn("login_error", "status", 400, "error", "missing email")
		return echo.NewHTTPError(http.StatusBadRequest, "email required")
	}

	user, err := sess.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	h.publish(c, map[string]any{"type": "user_login", "email": user.Email})
	l.Info("user logged in", "email", user.Email)
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "logout")

	sess, err := currentSession(c, h.Sessions)
	if err != nil {
		return err
	}

	user, wasIn := sess.Auth.User()
	if err := sess.Auth.Logout(ctx); err != nil {
		l.Error("logout_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	if wasIn {
		h.publish(c, map[string]any{"type": "user_logout", "email": user.Email})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) Me(c echo.Context) error {
	sess, err := currentSession(c, h.Sessions)
	if err != nil {
		return err
	}

	user, ok := sess.Auth.User()
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) publish(c echo.Context, event map[string]any) {
	if h.Publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, _ := profile.FromContext(c)
	event["profile"] = id
	if err := h.Publisher.Publish(ctx, events.TopicUser, id, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", events.TopicUser, "error", err)
	}
}
