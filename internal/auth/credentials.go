package auth

import (
	"context"
	"sync"

	"photolog/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type UserFinder interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// equalizer returns a valid bcrypt hash that unknown usernames are compared against.
func equalizer() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("photolog-timing-equalizer"), bcrypt.DefaultCost)
	})
	return dummyHash
}

// Credentials checks a username/password pair against the user store.
type Credentials struct {
	users UserFinder
}

func NewCredentials(users UserFinder) *Credentials {
	return &Credentials{users: users}
}

// Verify returns the user when the password matches, (nil, nil) when the pair is
// wrong, and an error only when the store fails.
func (c *Credentials) Verify(ctx context.Context, username, password string) (*models.User, error) {
	user, err := c.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(equalizer(), []byte(password))
		return nil, nil
	}

	if !CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil
	}

	return user, nil
}
