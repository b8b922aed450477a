package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusmarket/chat-service/internal/api/metrics"
	"github.com/campusmarket/chat-service/internal/core/domain"
	"github.com/campusmarket/chat-service/internal/core/ports"
)

// Deduper abstracts the duplicate-suppression store (Redis). Seen reports
// whether the key was already recorded and records it as a side effect.
type Deduper interface {
	Seen(ctx context.Context, senderID, listingID int64, clientMsgID string) (bool, error)
}

type chatService struct {
	verifier ports.TokenVerifier
	users    ports.UserDirectory
	listings ports.ListingDirectory
	messages ports.MessageRepository
	registry ports.RoomRegistry
	dedup    Deduper // optional; nil disables duplicate suppression
	log      zerolog.Logger
}

// NewChatService returns the ChatService implementation that routes
// accepted messages: validate, re-authenticate, persist, fan out.
func NewChatService(
	verifier ports.TokenVerifier,
	users ports.UserDirectory,
	listings ports.ListingDirectory,
	messages ports.MessageRepository,
	registry ports.RoomRegistry,
	dedup Deduper,
	log zerolog.Logger,
) ports.ChatService {
	return &chatService{
		verifier: verifier,
		users:    users,
		listings: listings,
		messages: messages,
		registry: registry,
		dedup:    dedup,
		log:      log,
	}
}

// Send processes one inbound chat message end to end. Persistence strictly
// precedes fan-out: a client reading history after seeing the live event
// can never miss the message it was broadcast from.
func (s *chatService) Send(ctx context.Context, in ports.IncomingMessage) (*domain.Message, error) {
	// 1. Structural validation before touching any collaborator.
	if in.Credential == "" || in.Body == "" || in.ListingID <= 0 {
		metrics.MessagesRejectedTotal.WithLabelValues("invalid_payload").Inc()
		return nil, domain.ErrInvalidPayload
	}

	// 2. Re-verify the per-message credential. The connection was already
	// admitted, but the token travels with every message and is checked
	// again so a hijacked session cannot outlive its credential.
	identity, err := s.verifier.Verify(in.Credential)
	if err != nil {
		s.log.Warn().Err(err).Msg("message credential rejected")
		metrics.MessagesRejectedTotal.WithLabelValues("bad_credential").Inc()
		return nil, domain.ErrUnauthenticated
	}

	sender, err := s.users.FindByEmail(ctx, identity.Subject)
	if err != nil {
		s.log.Warn().Err(err).Str("subject", identity.Subject).Msg("sender not found")
		metrics.MessagesRejectedTotal.WithLabelValues("unknown_sender").Inc()
		return nil, domain.ErrUnauthenticated
	}

	// 3. Existence check only — listing ownership and visibility are the
	// listing directory's concern.
	if _, err := s.listings.FindByID(ctx, in.ListingID); err != nil {
		metrics.MessagesRejectedTotal.WithLabelValues("unknown_listing").Inc()
		return nil, domain.ErrListingNotFound
	}

	// 4. Duplicate suppression, best effort. A failed dedup check must not
	// drop a legitimate message.
	if s.dedup != nil && in.ClientMsgID != "" {
		seen, err := s.dedup.Seen(ctx, sender.ID, in.ListingID, in.ClientMsgID)
		if err != nil {
			s.log.Warn().Err(err).Int64("sender_id", sender.ID).Msg("dedup check failed, processing anyway")
		} else if seen {
			s.log.Debug().
				Int64("sender_id", sender.ID).
				Str("client_msg_id", in.ClientMsgID).
				Msg("duplicate message skipped")
			metrics.MessagesRejectedTotal.WithLabelValues("duplicate").Inc()
			return nil, domain.ErrDuplicateMessage
		}
	}

	// 5. Persist with a server-assigned timestamp.
	msg := &domain.Message{
		SenderID:  sender.ID,
		ListingID: in.ListingID,
		Body:      in.Body,
		Timestamp: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		s.log.Error().Err(err).Int64("listing_id", in.ListingID).Msg("failed to persist message")
		metrics.MessagesRejectedTotal.WithLabelValues("store_error").Inc()
		return nil, domain.ErrStoreUnavailable
	}

	// 6. Fan out to the listing room. Broadcast to an empty room (sender
	// disconnected between send and delivery) is a harmless no-op.
	s.registry.Broadcast(domain.RoomID(in.ListingID), domain.ChatEvent{
		Body:        msg.Body,
		SenderID:    sender.ID,
		SenderEmail: sender.Email,
		Timestamp:   msg.Timestamp,
		ListingID:   msg.ListingID,
	})

	metrics.MessagesPersistedTotal.Inc()

	s.log.Info().
		Int64("sender_id", sender.ID).
		Int64("listing_id", in.ListingID).
		Str("message_id", msg.ID).
		Msg("message routed")

	return msg, nil
}
