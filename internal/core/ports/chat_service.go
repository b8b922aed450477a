package ports

import (
	"context"

	"github.com/campusmarket/chat-service/internal/core/domain"
)

// IncomingMessage is the DTO passed from the transport layer to ChatService.
// Credential is the per-message bearer token the client attached; it is
// re-verified server-side even though the connection was already admitted.
type IncomingMessage struct {
	Credential  string
	Body        string
	ListingID   int64
	ClientMsgID string // optional client-chosen ID for duplicate suppression
}

// ChatService routes an accepted message: validate, re-authenticate,
// persist, then fan out to the listing room.
type ChatService interface {
	Send(ctx context.Context, msg IncomingMessage) (*domain.Message, error)
}
