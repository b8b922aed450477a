package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campusmarket/chat-service/internal/ws"
)

// ChatHandler upgrades GET /ws requests and hands the connection to the
// gateway. The credential rides on the upgrade request as ?token=…, like
// the browser client sends it; admission happens after the upgrade so the
// client receives a structured connect_error instead of a bare HTTP 401.
type ChatHandler struct {
	gateway  *ws.Gateway
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewChatHandler(gateway *ws.Gateway, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		gateway: gateway,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The bearer token is the admission gate; origin allow-listing
			// belongs to the fronting proxy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *ChatHandler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn().Err(err).Str("remote", c.RealIP()).Msg("websocket upgrade failed")
		return nil // Upgrade already wrote the HTTP error
	}

	h.gateway.Serve(c.Request().Context(), conn, c.QueryParam("token"))
	return nil
}
