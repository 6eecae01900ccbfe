// Package storage is the durable key-value collaborator behind the cart,
// auth and chat stores. Each client profile gets its own namespace.
package storage

import (
	"context"
	"sync"
)

const (
	KeyCart         = "cart"
	KeyCurrentUser  = "currentUser"
	KeyChatMessages = "chatMessages"
)

type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Backend hands out per-profile namespaces.
type Backend interface {
	Scoped(profile string) Storage
}

type Memory struct {
	mu      *sync.RWMutex
	data    map[string][]byte
	profile string
}

func NewMemory() *Memory {
	return &Memory{
		mu:   &sync.RWMutex{},
		data: make(map[string][]byte),
	}
}

func (m *Memory) Scoped(profile string) Storage {
	return &Memory{mu: m.mu, data: m.data, profile: profile}
}

func (m *Memory) key(k string) string {
	return m.profile + "/" + k
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[m.key(key)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[m.key(key)] = v
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, m.key(key))
	return nil
}
