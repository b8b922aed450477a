package service

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/campusmarket/chat-service/internal/core/domain"
	"github.com/campusmarket/chat-service/internal/core/ports"
)

// TokenVerifier validates the HS256 bearer tokens issued by AuthService and
// resolves them to an identity claim. Stateless; safe for concurrent use.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify parses and validates the credential. All failure paths map to the
// credential error taxonomy so callers can emit a structured rejection.
func (v *TokenVerifier) Verify(credential string) (ports.Identity, error) {
	if credential == "" {
		return ports.Identity{}, domain.ErrMissingCredential
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(credential, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !tkn.Valid {
		return ports.Identity{}, domain.ErrInvalidCredential
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return ports.Identity{}, domain.ErrInvalidCredential
	}

	return ports.Identity{Subject: sub}, nil
}
