package testutil

import (
	"context"
	"sync"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/tokenstore"
)

// FlakyKV wraps a MemoryKV and can be told to fail reads or writes.
type FlakyKV struct {
	*tokenstore.MemoryKV

	mu       sync.RWMutex
	readErr  error
	writeErr error
	writes   int
}

// NewFlakyKV creates a FlakyKV seeded with values.
func NewFlakyKV(values map[string]string) *FlakyKV {
	kv := &FlakyKV{MemoryKV: tokenstore.NewMemoryKV()}
	for k, v := range values {
		_ = kv.MemoryKV.Set(context.Background(), k, v)
	}
	return kv
}

// FailReads makes every Get return err. Nil restores normal reads.
func (f *FlakyKV) FailReads(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
}

// FailWrites makes every Set and Delete return err.
func (f *FlakyKV) FailWrites(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeErr = err
}

// Writes counts Set and Delete calls, failed ones included.
func (f *FlakyKV) Writes() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.writes
}

// Value returns the stored value for key, bypassing read failures.
func (f *FlakyKV) Value(key string) (string, bool) {
	v, err := f.MemoryKV.Get(context.Background(), key)
	return v, err == nil
}

func (f *FlakyKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.RLock()
	err := f.readErr
	f.mu.RUnlock()
	if err != nil {
		return "", err
	}
	return f.MemoryKV.Get(ctx, key)
}

func (f *FlakyKV) Set(ctx context.Context, key, value string) error {
	if err := f.recordWrite(); err != nil {
		return err
	}
	return f.MemoryKV.Set(ctx, key, value)
}

func (f *FlakyKV) Delete(ctx context.Context, key string) error {
	if err := f.recordWrite(); err != nil {
		return err
	}
	return f.MemoryKV.Delete(ctx, key)
}

func (f *FlakyKV) recordWrite() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	return f.writeErr
}
