package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RoomStats is the live-state source the stats endpoint reads from.
type RoomStats interface {
	Rooms() int
}

// SessionStats reports live connection counts.
type SessionStats interface {
	Sessions() int
}

// StatsHandler handles GET /chat/stats — an admin-only snapshot of the
// live fan-out state, for operators who want numbers without scraping
// /metrics.
type StatsHandler struct {
	rooms    RoomStats
	sessions SessionStats
}

func NewStatsHandler(rooms RoomStats, sessions SessionStats) *StatsHandler {
	return &StatsHandler{rooms: rooms, sessions: sessions}
}

type statsResponse struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}

func (h *StatsHandler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, statsResponse{
		Rooms:       h.rooms.Rooms(),
		Connections: h.sessions.Sessions(),
	})
}
