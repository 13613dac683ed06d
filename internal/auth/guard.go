package auth

import (
	"context"
	"fmt"

	"photolog/internal/models"
)

// Guard turns a presented token into the user it was issued to.
type Guard struct {
	codec *Codec
	users UserFinder
}

func NewGuard(codec *Codec, users UserFinder) *Guard {
	return &Guard{codec: codec, users: users}
}

// Authenticate rejects with an error matching ErrRejected, or returns a
// non-rejection error when the user store fails.
func (g *Guard) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrMissing
	}

	username, err := g.codec.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := g.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session subject: %w", err)
	}
	if user == nil {
		return nil, ErrUnknownSubject
	}

	return user, nil
}
