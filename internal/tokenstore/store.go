// Package tokenstore persists the session token and the active store id in
// a durable key-value backend.
package tokenstore

import (
	"context"
	"errors"
	"sync"

	apperrors "github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/errors"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/logging"
)

// Fixed storage keys.
const (
	TokenKey       = "userToken"
	ActiveStoreKey = "selectedStore"
)

// ErrNotFound is returned by a KV when the key is absent.
var ErrNotFound = errors.New("tokenstore: key not found")

// KV is a durable string key-value backend. Delete of a missing key is not
// an error.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store exposes the token and active-store operations on top of a KV.
// Reads fail open: any backend error reads as "absent".
type Store struct {
	kv     KV
	logger *logging.Logger
}

// New creates a Store. A nil logger discards output.
func New(kv KV, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{kv: kv, logger: logger}
}

// Save persists the token.
func (s *Store) Save(ctx context.Context, token string) error {
	return s.set(ctx, TokenKey, token)
}

// Read returns the persisted token, or "" when none is stored or the
// backend cannot be read.
func (s *Store) Read(ctx context.Context) string {
	return s.get(ctx, TokenKey)
}

// Clear removes the token.
func (s *Store) Clear(ctx context.Context) error {
	return s.delete(ctx, TokenKey)
}

// SaveActiveStore persists the selected store id.
func (s *Store) SaveActiveStore(ctx context.Context, storeID string) error {
	return s.set(ctx, ActiveStoreKey, storeID)
}

// ReadActiveStore returns the persisted store id, or "".
func (s *Store) ReadActiveStore(ctx context.Context) string {
	return s.get(ctx, ActiveStoreKey)
}

// ClearActiveStore removes the selected store id.
func (s *Store) ClearActiveStore(ctx context.Context) error {
	return s.delete(ctx, ActiveStoreKey)
}

func (s *Store) get(ctx context.Context, key string) string {
	value, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("token store read failed; treating as absent")
		}
		return ""
	}
	return value
}

func (s *Store) set(ctx context.Context, key, value string) error {
	if err := s.kv.Set(ctx, key, value); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("token store write failed")
		return apperrors.Storage("write "+key, err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("token store delete failed")
		return apperrors.Storage("delete "+key, err)
	}
	return nil
}

// MemoryKV is an in-process KV.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
