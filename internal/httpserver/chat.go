package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/chat"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type ChatHTTP struct {
	Sessions Sessions
}

func (h *ChatHTTP) Get(c echo.Context) error {
	sess, err := currentSession(c, h.Sessions)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.ChatResponse{
		State:    sess.Chat.State().String(),
		Messages: sess.Chat.Messages(),
	})
}

// Send blocks for the reply delay; a client that goes away cancels the
// pending reply.
func (h *ChatHTTP) Send(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "send.chat")

	sess, err := currentSession(c, h.Sessions)
	if err != nil {
		return err
	}

	var req transport.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("send_chat_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	reply, err := sess.Chat.Send(ctx, req.Text)
	switch {
	case err == nil:
	case errors.Is(err, chat.ErrEmptyMessage):
		l.Warn("send_chat_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrAwaitingResponse):
		l.Warn("send_chat_error", "status", 409, "error", err)
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		l.Warn("send_chat_error", "status", 503, "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "reply cancelled")
	default:
		l.Error("send_chat_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, transport.SendMessageResponse{
		Reply:    reply,
		Messages: sess.Chat.Messages(),
	})
}
