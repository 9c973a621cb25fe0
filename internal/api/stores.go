package api

import (
	"context"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/domain"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/httputil"
)

// =============================================================================
// Businesses
// =============================================================================

// GetBusiness fetches a business profile. An empty id means the active store.
func (c *Client) GetBusiness(ctx context.Context, id string) (*Business, error) {
	id, err := c.storeID(id)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Get(ctx, path("/businesses/b", id))
	if err != nil {
		return nil, err
	}
	var business Business
	if err := httputil.DecodeResponse(resp, "business", &business); err != nil {
		return nil, err
	}
	return &business, nil
}

// UpdateOpeningHours replaces a business's opening hours.
func (c *Client) UpdateOpeningHours(ctx context.Context, id string, hours []domain.OpeningHours) error {
	id, err := c.storeID(id)
	if err != nil {
		return err
	}
	_, err = c.http.Put(ctx, path("/businesses", id, "opening-hours"), map[string]interface{}{
		"openingHours": hours,
	})
	return err
}

// =============================================================================
// Stores and team
// =============================================================================

// ListStores returns the stores visible to the current user.
func (c *Client) ListStores(ctx context.Context) ([]domain.Store, error) {
	resp, err := c.http.Get(ctx, "/stores")
	if err != nil {
		return nil, err
	}
	var stores []domain.Store
	if err := httputil.DecodeResponse(resp, "stores", &stores); err != nil {
		return nil, err
	}
	return stores, nil
}

// CreateStore creates a store, or a branch when in.ParentStore is set.
func (c *Client) CreateStore(ctx context.Context, in StoreInput) (*domain.Store, error) {
	resp, err := c.http.Post(ctx, "/stores", in)
	if err != nil {
		return nil, err
	}
	var store domain.Store
	if err := httputil.DecodeResponse(resp, "store", &store); err != nil {
		return nil, err
	}
	return &store, nil
}

// UpdateStore updates a store. An empty id means the active store.
func (c *Client) UpdateStore(ctx context.Context, id string, in StoreInput) (*domain.Store, error) {
	id, err := c.storeID(id)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Put(ctx, path("/stores", id), in)
	if err != nil {
		return nil, err
	}
	var store domain.Store
	if err := httputil.DecodeResponse(resp, "store", &store); err != nil {
		return nil, err
	}
	return &store, nil
}

// DeleteStore deletes a store by explicit id.
func (c *Client) DeleteStore(ctx context.Context, id string) error {
	_, err := c.http.Delete(ctx, path("/stores", id))
	return err
}

// ListManagers lists a store's managers.
func (c *Client) ListManagers(ctx context.Context, storeID string) ([]Manager, error) {
	storeID, err := c.storeID(storeID)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Get(ctx, path("/stores", storeID, "managers"))
	if err != nil {
		return nil, err
	}
	var managers []Manager
	if err := httputil.DecodeResponse(resp, "managers", &managers); err != nil {
		return nil, err
	}
	return managers, nil
}

// AddManager invites a manager to a store.
func (c *Client) AddManager(ctx context.Context, storeID string, in ManagerInput) (*httputil.Response, error) {
	storeID, err := c.storeID(storeID)
	if err != nil {
		return nil, err
	}
	return c.http.Post(ctx, path("/stores", storeID, "managers"), in)
}

// RemoveManager revokes a manager's access.
func (c *Client) RemoveManager(ctx context.Context, storeID, managerID string) error {
	storeID, err := c.storeID(storeID)
	if err != nil {
		return err
	}
	_, err = c.http.Delete(ctx, path("/stores", storeID, "managers", managerID))
	return err
}
