package ports

import (
	"context"

	"github.com/campusmarket/chat-service/internal/core/domain"
)

// AuthService issues the bearer tokens the chat layer verifies. Account
// creation lives in the accounts system, not here.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
