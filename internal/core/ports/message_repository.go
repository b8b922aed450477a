package ports

import (
	"context"

	"github.com/campusmarket/chat-service/internal/core/domain"
)

// MessageRepository is the durable message store. Messages are append-only;
// nothing in the chat layer updates or deletes them.
type MessageRepository interface {
	// Create persists the message and fills in its assigned ID.
	Create(ctx context.Context, msg *domain.Message) error

	// ListByListing returns up to limit messages for a listing, oldest first.
	ListByListing(ctx context.Context, listingID int64, limit int) ([]*domain.Message, error)
}
