// Package chat is the scripted support widget: an append-only transcript
// with a keyword responder that answers after a fixed delay.
package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/storage"
)

const (
	Greeting        = "Hello! How can I help you today?"
	FallbackReply   = "I'm sorry, I didn't understand that. Could you please rephrase?"
	DefaultDelay    = time.Second
	legacyAssistant = "ai"
)

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrAwaitingResponse = errors.New("still waiting for the previous reply")
)

type State int

const (
	Idle State = iota
	AwaitingResponse
)

func (s State) String() string {
	if s == AwaitingResponse {
		return "awaiting-response"
	}
	return "idle"
}

type Rule struct {
	Keyword  string
	Response string
}

// DefaultRules are checked in order; the first keyword found wins.
var DefaultRules = []Rule{
	{Keyword: "return", Response: "Our return policy allows returns within 30 days. Would you like to start a return?"},
	{Keyword: "order", Response: "I can help with order issues. Please provide your order number."},
}

type Responder struct {
	Rules    []Rule
	Fallback string
}

func DefaultResponder() Responder {
	return Responder{Rules: DefaultRules, Fallback: FallbackReply}
}

func (r Responder) Respond(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range r.Rules {
		if rule.Keyword != "" && strings.Contains(lower, strings.ToLower(rule.Keyword)) {
			return rule.Response
		}
	}
	return r.Fallback
}

type Chat struct {
	mu        sync.Mutex
	storage   storage.Storage
	responder Responder
	delay     time.Duration
	now       func() time.Time
	messages  []models.ChatMessage
	state     State
}

type Option func(*Chat)

func WithDelay(d time.Duration) Option {
	return func(c *Chat) { c.delay = d }
}

func WithClock(now func() time.Time) Option {
	return func(c *Chat) { c.now = now }
}

// New replays the stored transcript. On the very first load there is none,
// so the assistant greets first.
func New(ctx context.Context, s storage.Storage, opts ...Option) *Chat {
	c := &Chat{
		storage:   s,
		responder: DefaultResponder(),
		delay:     DefaultDelay,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	l := logging.FromContext(ctx).With("svc", "chat")

	var msgs []models.ChatMessage
	found, err := storage.Load(ctx, s, storage.KeyChatMessages, &msgs)
	if err != nil {
		l.Warn("chat_load_error", "reason", "transcript unreadable, starting over", "error", err)
		found, msgs = false, nil
	}
	for i := range msgs {
		if msgs[i].Sender == legacyAssistant {
			msgs[i].Sender = models.SenderAssistant
		}
	}
	c.messages = msgs

	if !found {
		c.messages = append(c.messages, c.message(Greeting, models.SenderAssistant))
		if err := c.persist(ctx); err != nil {
			l.Warn("chat_greeting_not_saved", "error", err)
		}
	}
	return c
}

// Send appends the user's message, waits for the reply delay and appends
// exactly one canned reply. Cancelling ctx during the wait drops the reply.
func (c *Chat) Send(ctx context.Context, text string) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.state == AwaitingResponse {
		c.mu.Unlock()
		return models.ChatMessage{}, ErrAwaitingResponse
	}
	c.messages = append(c.messages, c.message(text, models.SenderUser))
	if err := c.persist(ctx); err != nil {
		c.messages = c.messages[:len(c.messages)-1]
		c.mu.Unlock()
		return models.ChatMessage{}, err
	}
	c.state = AwaitingResponse
	c.mu.Unlock()

	if err := c.wait(ctx); err != nil {
		c.setState(Idle)
		return models.ChatMessage{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Idle
	reply := c.message(c.responder.Respond(text), models.SenderAssistant)
	c.messages = append(c.messages, reply)
	if err := c.persist(ctx); err != nil {
		c.messages = c.messages[:len(c.messages)-1]
		return models.ChatMessage{}, err
	}
	return reply, nil
}

func (c *Chat) Messages() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

func (c *Chat) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Chat) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Chat) wait(ctx context.Context) error {
	if c.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Chat) message(text string, sender models.Sender) models.ChatMessage {
	return models.ChatMessage{Text: text, Sender: sender, Timestamp: c.now().UTC()}
}

func (c *Chat) persist(ctx context.Context) error {
	if err := storage.Save(ctx, c.storage, storage.KeyChatMessages, c.messages); err != nil {
		return fmt.Errorf("persist chat: %w", err)
	}
	return nil
}
