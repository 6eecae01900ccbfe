package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
)

const DefaultDisplayName = "Customer"

// StubIdentity accepts any credentials. The token is an HS256 JWT with a
// random jti; nothing in the system ever validates it.
type StubIdentity struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewStubIdentity(secret []byte) *StubIdentity {
	return &StubIdentity{Secret: secret, TTL: 7 * 24 * time.Hour, Now: time.Now}
}

func (i *StubIdentity) Authenticate(_ context.Context, email, _ string) (models.UserSession, error) {
	token, err := i.newToken(email)
	if err != nil {
		return models.UserSession{}, err
	}
	return models.UserSession{
		Email: email,
		Name:  DefaultDisplayName,
		Token: token,
	}, nil
}

func (i *StubIdentity) newToken(email string) (string, error) {
	now := time.Now
	if i.Now != nil {
		now = i.Now
	}
	issued := now()

	claims := jwt.RegisteredClaims{
		Subject:  email,
		ID:       uuid.NewString(),
		IssuedAt: jwt.NewNumericDate(issued),
	}
	if i.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(issued.Add(i.TTL))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}
