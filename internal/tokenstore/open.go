package tokenstore

import (
	"fmt"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/config"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/logging"
)

// Open builds the KV selected by cfg and wraps it in a Store. The returned
// close function releases backend resources and is never nil.
func Open(cfg config.StorageConfig, logger *logging.Logger) (*Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendMemory:
		return New(NewMemoryKV(), logger), noop, nil
	case config.BackendRedis:
		kv := DialRedisKV(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
		return New(kv, logger), kv.Close, nil
	case config.BackendFile, "":
		key, err := cfg.SealKeyBytes()
		if err != nil {
			return nil, noop, err
		}
		kv, err := NewFileKV(cfg.Dir, key)
		if err != nil {
			return nil, noop, err
		}
		return New(kv, logger), noop, nil
	default:
		return nil, noop, fmt.Errorf("tokenstore: unknown backend %q", cfg.Backend)
	}
}
