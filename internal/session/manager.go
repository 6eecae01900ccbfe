// Package session owns the per-profile state: one cart, one auth store and
// one chat transcript per client profile, all backed by that profile's
// durable namespace.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/chat"
	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/order"
	"github.com/Skotchmaster/storefront/internal/storage"
)

var ErrNoProfile = errors.New("profile id is required")

const (
	publishTimeout = 5 * time.Second

	DefaultMaxSessions = 10000
	DefaultIdleTTL     = 30 * time.Minute
)

type Session struct {
	Profile  string
	Cart     *cart.Store
	Auth     *auth.Store
	Chat     *chat.Chat
	Checkout *checkout.Service
}

// Manager keeps live sessions in a bounded cache. A session idle for
// IdleTTL, or pushed out once MaxSessions are live, is dropped from memory
// and rebuilt from its durable namespace on the next request.
type Manager struct {
	Backend   storage.Backend
	Identity  auth.Identity
	Submitter order.Submitter
	Rates     checkout.Rates
	ChatDelay time.Duration
	Publisher events.Publisher

	MaxSessions int
	IdleTTL     time.Duration

	once     sync.Once
	mu       sync.Mutex // orders lookups against inserts; never held across I/O
	sessions *expirable.LRU[string, *Session]
	loading  singleflight.Group
}

func NewManager(backend storage.Backend, identity auth.Identity, sub order.Submitter, rates checkout.Rates) *Manager {
	return &Manager{
		Backend:   backend,
		Identity:  identity,
		Submitter: sub,
		Rates:     rates,
		ChatDelay: chat.DefaultDelay,
		Publisher: events.Nop{},

		MaxSessions: DefaultMaxSessions,
		IdleTTL:     DefaultIdleTTL,
	}
}

func (m *Manager) cache() *expirable.LRU[string, *Session] {
	m.once.Do(func() {
		m.sessions = expirable.NewLRU[string, *Session](m.MaxSessions, nil, m.IdleTTL)
	})
	return m.sessions
}

// lookup returns the cached session and restarts its idle clock.
func (m *Manager) lookup(profile string) (*Session, bool) {
	cache := m.cache()
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := cache.Get(profile)
	if ok {
		cache.Add(profile, s)
	}
	return s, ok
}

// Get returns the session of profile, loading it from storage when the
// profile has no live session. Concurrent loads of one profile share a
// single build; loads of different profiles do not wait on each other.
func (m *Manager) Get(ctx context.Context, profile string) (*Session, error) {
	if profile == "" {
		return nil, ErrNoProfile
	}
	if s, ok := m.lookup(profile); ok {
		return s, nil
	}

	v, err, _ := m.loading.Do(profile, func() (any, error) {
		if s, ok := m.lookup(profile); ok {
			return s, nil
		}
		// the build is shared, so one caller going away must not cut it short
		s := m.load(context.WithoutCancel(ctx), profile)

		m.mu.Lock()
		defer m.mu.Unlock()
		if live, ok := m.sessions.Get(profile); ok {
			return live, nil
		}
		m.sessions.Add(profile, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (m *Manager) load(ctx context.Context, profile string) *Session {
	l := logging.FromContext(ctx).With("svc", "session", "profile", profile)
	ctx = logging.IntoContext(ctx, l)

	st := m.Backend.Scoped(profile)
	c := cart.New(ctx, st)
	c.OnChange(m.publishCart(profile))

	s := &Session{
		Profile:  profile,
		Cart:     c,
		Auth:     auth.New(ctx, st, m.Identity),
		Chat:     chat.New(ctx, st, chat.WithDelay(m.ChatDelay)),
		Checkout: checkout.NewService(c, m.Submitter, m.Rates),
	}

	l.Info("session_loaded", "items", c.Count(), "live_sessions", m.Len())
	return s
}

// Len reports how many profiles have a session in memory, counting idle
// ones not yet swept.
func (m *Manager) Len() int {
	return m.cache().Len()
}

func (m *Manager) publishCart(profile string) cart.Listener {
	return func(ctx context.Context, ch cart.Change) {
		if m.Publisher == nil {
			return
		}
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()

		event := map[string]any{
			"type":    string(ch.Type),
			"profile": profile,
			"count":   ch.Count,
		}
		if ch.ProductID != "" {
			event["productID"] = ch.ProductID
			event["quantity"] = ch.Quantity
		}
		if err := m.Publisher.Publish(ctx, events.TopicCart, profile, event); err != nil {
			logging.FromContext(ctx).Error("kafka_publish_error", "topic", events.TopicCart, "error", err)
		}
	}
}
