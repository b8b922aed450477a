package ports

import (
	"context"

	"github.com/campusmarket/chat-service/internal/core/domain"
)

// UserDirectory resolves identity claims to user records. Owned by the
// accounts system; the chat layer only reads from it.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error)
}

// ListingDirectory resolves listing identifiers. The chat layer only needs
// an existence check before scoping a conversation to a listing.
type ListingDirectory interface {
	FindByID(ctx context.Context, id int64) (*domain.Listing, error)
}
