package codestore

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/xxxsen/portfolio/internal/model"
	appErr "github.com/xxxsen/portfolio/internal/pkg/errors"
)

type memoryStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, model.VerificationCode]
}

// NewMemoryStore keeps at most size codes in process memory. Past size the
// least recently used code is evicted whether or not it expired. retention is
// enforced by the LRU's background purge and must exceed the code TTL so that
// an expired code is still seen, and reported as expired, on the next read.
func NewMemoryStore(size int, retention time.Duration) Store {
	if size <= 0 {
		size = 10000
	}
	return &memoryStore{
		cache: expirable.NewLRU[string, model.VerificationCode](size, nil, retention),
	}
}

func (m *memoryStore) Put(_ context.Context, item *model.VerificationCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Add(item.Email, *item)
	return nil
}

func (m *memoryStore) Get(_ context.Context, email string) (*model.VerificationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.cache.Get(email)
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return &item, nil
}

func (m *memoryStore) DeleteIf(_ context.Context, email, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.cache.Peek(email)
	if !ok || item.Code != code {
		return false, nil
	}
	return m.cache.Remove(email), nil
}
