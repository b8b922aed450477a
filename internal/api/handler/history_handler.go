package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusmarket/chat-service/internal/core/ports"
)

// HistoryHandler serves the persisted side of a listing conversation. A
// client that reads history after seeing a live event never misses a
// message, because persistence precedes broadcast on the write path.
type HistoryHandler struct {
	messages ports.MessageRepository
	listings ports.ListingDirectory
	users    ports.UserDirectory
	limit    int
}

func NewHistoryHandler(
	messages ports.MessageRepository,
	listings ports.ListingDirectory,
	users ports.UserDirectory,
	limit int,
) *HistoryHandler {
	if limit <= 0 {
		limit = 200
	}
	return &HistoryHandler{messages: messages, listings: listings, users: users, limit: limit}
}

type historyItem struct {
	ID          string    `json:"id"`
	SenderID    int64     `json:"sender_id"`
	SenderEmail string    `json:"sender_email"`
	ListingID   int64     `json:"listing_id"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

type historyResponse struct {
	ListingID int64         `json:"listing_id"`
	Messages  []historyItem `json:"messages"`
}

// List returns a listing's messages oldest first, with sender emails
// joined in from the user directory.
func (h *HistoryHandler) List(c echo.Context) error {
	listingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || listingID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid listing id")
	}

	ctx := c.Request().Context()

	if _, err := h.listings.FindByID(ctx, listingID); err != nil {
		return err
	}

	limit := h.limit
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < limit {
			limit = n
		}
	}

	msgs, err := h.messages.ListByListing(ctx, listingID, limit)
	if err != nil {
		return err
	}

	senderIDs := make([]int64, 0, len(msgs))
	seen := make(map[int64]struct{}, len(msgs))
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}

	senders, err := h.users.FindByIDs(ctx, senderIDs)
	if err != nil {
		return err
	}

	items := make([]historyItem, 0, len(msgs))
	for _, m := range msgs {
		item := historyItem{
			ID:        m.ID,
			SenderID:  m.SenderID,
			ListingID: m.ListingID,
			Message:   m.Body,
			Timestamp: m.Timestamp,
		}
		if u, ok := senders[m.SenderID]; ok {
			item.SenderEmail = u.Email
		}
		items = append(items, item)
	}

	return c.JSON(http.StatusOK, historyResponse{ListingID: listingID, Messages: items})
}
