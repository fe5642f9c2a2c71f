// Package tokenstore persists the bearer token across restarts under one
// fixed key.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/config"
)

var ErrNotFound = errors.New("no token stored")

type Store interface {
	// Load returns ErrNotFound when nothing is stored.
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	// Delete is a no-op when nothing is stored.
	Delete(ctx context.Context) error
	Close() error
}

// Open builds the store selected by cfg.Tokens.Backend.
func Open(ctx context.Context, cfg *config.AppConfig) (Store, error) {
	switch cfg.Tokens.Backend {
	case "", "file":
		return NewFile(cfg.Tokens.Path), nil
	case "redis":
		return NewRedis(ctx, cfg.Redis, cfg.Tokens.Key)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown token backend %q", cfg.Tokens.Backend)
	}
}

type Memory struct {
	mu    sync.Mutex
	token string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", ErrNotFound
	}
	return m.token, nil
}

func (m *Memory) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *Memory) Close() error { return nil }
