package tokenstore

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/config"
	apperrors "github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/errors"
)

type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) (string, error) { return "", f.err }
func (f failingKV) Set(context.Context, string, string) error   { return f.err }
func (f failingKV) Delete(context.Context, string) error        { return f.err }

func TestStore_MemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryKV(), nil)

	assert.Empty(t, store.Read(ctx))

	require.NoError(t, store.Save(ctx, "tok-1"))
	assert.Equal(t, "tok-1", store.Read(ctx))

	require.NoError(t, store.SaveActiveStore(ctx, "s-1"))
	assert.Equal(t, "s-1", store.ReadActiveStore(ctx))

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	assert.Empty(t, store.Read(ctx))
	assert.Equal(t, "s-1", store.ReadActiveStore(ctx))

	require.NoError(t, store.ClearActiveStore(ctx))
	assert.Empty(t, store.ReadActiveStore(ctx))
}

func TestStore_ReadFailsOpen(t *testing.T) {
	store := New(failingKV{err: errors.New("disk unavailable")}, nil)
	assert.Empty(t, store.Read(context.Background()))
	assert.Empty(t, store.ReadActiveStore(context.Background()))
}

func TestStore_WriteFailureIsStorageError(t *testing.T) {
	store := New(failingKV{err: errors.New("read-only filesystem")}, nil)

	err := store.Save(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindStorage))

	err = store.Clear(context.Background())
	assert.True(t, apperrors.IsKind(err, apperrors.KindStorage))
}

func TestFileKV_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileKV(dir, nil)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, TokenKey, "persisted"))

	second, err := NewFileKV(dir, nil)
	require.NoError(t, err)
	value, err := second.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "persisted", value)

	info, err := os.Stat(second.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, second.Delete(ctx, TokenKey))
	require.NoError(t, second.Delete(ctx, TokenKey))
	_, err = first.Get(ctx, TokenKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileKV_Sealed(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	var key [32]byte
	copy(key[:], strings.Repeat("k", 32))

	kv, err := NewFileKV(dir, &key)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, TokenKey, "secret-token"))

	raw, err := os.ReadFile(kv.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")

	value, err := kv.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", value)

	var otherKey [32]byte
	copy(otherKey[:], strings.Repeat("x", 32))
	wrong, err := NewFileKV(dir, &otherKey)
	require.NoError(t, err)
	_, err = wrong.Get(ctx, TokenKey)
	require.Error(t, err)

	// A store over the wrong key fails open.
	assert.Empty(t, New(wrong, nil).Read(ctx))
}

func TestFileKV_CorruptDocumentFailsOpen(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(kv.Path(), []byte("{not json"), 0o600))

	assert.Empty(t, New(kv, nil).Read(context.Background()))
}

func TestFileKV_CancelledContext(t *testing.T) {
	kv, err := NewFileKV(t.TempDir(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, kv.Set(ctx, TokenKey, "x"), context.Canceled)
}

func TestRedisKV_Key(t *testing.T) {
	kv := NewRedisKV(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "tradeet:vendor")
	defer kv.Close()
	assert.Equal(t, "tradeet:vendor:userToken", kv.Key(TokenKey))
	assert.Equal(t, "selectedStore", NewRedisKV(nil, "").Key(ActiveStoreKey))
}

func TestRedisKV_UnreachableFailsOpen(t *testing.T) {
	kv := NewRedisKV(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}), "test")
	defer kv.Close()

	store := New(kv, nil)
	assert.Empty(t, store.Read(context.Background()))
	assert.True(t, apperrors.IsKind(store.Save(context.Background(), "tok"), apperrors.KindStorage))
}

func TestOpen(t *testing.T) {
	store, closeFn, err := Open(config.StorageConfig{Backend: config.BackendMemory}, nil)
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.NoError(t, closeFn())

	store, _, err = Open(config.StorageConfig{Backend: config.BackendFile, Dir: t.TempDir()}, nil)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "tok"))
	assert.Equal(t, "tok", store.Read(context.Background()))

	_, _, err = Open(config.StorageConfig{Backend: "etcd"}, nil)
	assert.Error(t, err)
}
