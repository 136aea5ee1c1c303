// Package identity remembers, per game, which player this client is acting as.
package identity

import (
	"context"
	"sync"
)

// Store maps game ids to the local player id. Get returns "" when nothing is stored.
type Store interface {
	Get(ctx context.Context, gameID string) (string, error)
	Save(ctx context.Context, gameID, playerID string) error
	Clear(ctx context.Context, gameID string) error
	ClearAll(ctx context.Context) error
}

// Memory is a Store that lives as long as the process.
type Memory struct {
	mu      sync.RWMutex
	players map[string]string
}

func NewMemory() *Memory {
	return &Memory{players: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, gameID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.players[gameID], nil
}

func (m *Memory) Save(_ context.Context, gameID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[gameID] = playerID
	return nil
}

func (m *Memory) Clear(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.players, gameID)
	return nil
}

func (m *Memory) ClearAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players = make(map[string]string)
	return nil
}
