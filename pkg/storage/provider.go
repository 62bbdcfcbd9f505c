package storage

import (
	"context"
	"sync"
)

// Provider is a key-value store addressed by string keys. It is the only I/O
// boundary of the package.
type Provider interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// MemoryProvider is an in-memory Provider intended for tests and examples.
type MemoryProvider struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{records: map[string][]byte{}}
}

func (p *MemoryProvider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	p.mu.RLock()
	value, ok := p.records[key]
	p.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (p *MemoryProvider) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	p.records[key] = append([]byte(nil), value...)
	p.mu.Unlock()
	return nil
}

func (p *MemoryProvider) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	delete(p.records, key)
	p.mu.Unlock()
	return nil
}
