// Package auth keeps the single "current user" of a profile. Login is a stub
// boundary: any credentials are accepted by StubIdentity.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/storage"
)

var ErrLoginFailed = errors.New("login failed")

// Identity turns credentials into a session.
type Identity interface {
	Authenticate(ctx context.Context, email, password string) (models.UserSession, error)
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (models.UserSession, error)
	Logout(ctx context.Context) error
	IsAuthenticated() bool
	User() (models.UserSession, bool)
}

type Store struct {
	mu       sync.RWMutex
	storage  storage.Storage
	identity Identity
	user     *models.UserSession
}

var _ Authenticator = (*Store)(nil)

func New(ctx context.Context, s storage.Storage, identity Identity) *Store {
	st := &Store{storage: s, identity: identity}

	var u *models.UserSession
	if _, err := storage.Load(ctx, s, storage.KeyCurrentUser, &u); err != nil {
		logging.FromContext(ctx).Warn("auth_load_error", "reason", "session unreadable, logged out", "error", err)
		u = nil
	}
	if u != nil && u.Email != "" {
		st.user = u
	}
	return st
}

// Login replaces whatever session exists with a fresh one.
func (s *Store) Login(ctx context.Context, email, password string) (models.UserSession, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	u, err := s.identity.Authenticate(ctx, email, password)
	if err != nil {
		l.Warn("login_failed", "error", err)
		return models.UserSession{}, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := storage.Save(ctx, s.storage, storage.KeyCurrentUser, u); err != nil {
		return models.UserSession{}, fmt.Errorf("persist session: %w", err)
	}
	s.user = &u

	l.Info("login_successful")
	return u, nil
}

func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Remove(ctx, storage.KeyCurrentUser); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	s.user = nil
	return nil
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *Store) User() (models.UserSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.UserSession{}, false
	}
	return *s.user, true
}
