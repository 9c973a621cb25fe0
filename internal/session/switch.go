package session

import (
	"context"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/domain"
	apperrors "github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/errors"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/metrics"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/storeswitch"
)

// SwitchSelectedStore resolves target against the user's stores, makes the
// result active and persists its id. It does not wait for auth operations,
// so in-flight requests for the previous store keep running; callers
// re-fetch once it returns. An unknown id leaves the active store unchanged.
func (m *Manager) SwitchSelectedStore(ctx context.Context, target storeswitch.Target) (domain.Store, error) {
	m.mu.RLock()
	user, gen := m.user, m.generation
	var stores []domain.Store
	if user != nil {
		stores = user.Stores
	}
	m.mu.RUnlock()

	if user == nil {
		return domain.Store{}, apperrors.ErrNotAuthenticated
	}

	res, err := storeswitch.Resolve(stores, target)
	if err != nil {
		metrics.RecordStoreSwitch("not_found")
		m.logger.WithContext(ctx).WithField("target", target.String()).Warn("store switch failed")
		return domain.Store{}, err
	}

	m.mu.Lock()
	if m.generation != gen || m.user == nil {
		m.mu.Unlock()
		m.discardStale(ctx, "switch_store")
		return domain.Store{}, apperrors.ErrStaleSession
	}
	selected := res.Store.Clone()
	m.activeStore = &selected
	m.mu.Unlock()

	// The in-memory selection stands even if the write fails.
	_ = m.tokens.SaveActiveStore(ctx, selected.ID)

	metrics.RecordStoreSwitch(string(res.Method))
	entry := m.logger.WithContext(ctx).WithField("store_id", selected.ID).WithField("method", res.Method)
	if res.Degraded() {
		entry.Warn("branch parent not found; using branch as active store")
	} else {
		entry.Info("active store switched")
	}
	m.notify()
	return selected.Clone(), nil
}
