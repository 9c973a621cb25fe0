package api

import (
	"context"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/httputil"
)

// =============================================================================
// Orders
// =============================================================================

// ListOrders lists a store's orders. An empty id means the active store.
func (c *Client) ListOrders(ctx context.Context, storeID string) ([]Order, error) {
	storeID, err := c.storeID(storeID)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Get(ctx, path("/orders/store", storeID))
	if err != nil {
		return nil, err
	}
	var orders []Order
	if err := httputil.DecodeResponse(resp, "orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ProcessTransfer requests a payout. An empty StoreID means the active store.
func (c *Client) ProcessTransfer(ctx context.Context, req TransferRequest) (*httputil.Response, error) {
	storeID, err := c.storeID(req.StoreID)
	if err != nil {
		return nil, err
	}
	req.StoreID = storeID
	return c.http.Post(ctx, "/orders/process-transfer", req)
}

// =============================================================================
// Products
// =============================================================================

// CreateProduct adds a product. An empty StoreID means the active store.
func (c *Client) CreateProduct(ctx context.Context, p Product) (*Product, error) {
	storeID, err := c.storeID(p.StoreID)
	if err != nil {
		return nil, err
	}
	p.StoreID = storeID
	resp, err := c.http.Post(ctx, "/products", p)
	if err != nil {
		return nil, err
	}
	var created Product
	if err := httputil.DecodeResponse(resp, "product", &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct replaces a product.
func (c *Client) UpdateProduct(ctx context.Context, id string, p Product) (*Product, error) {
	resp, err := c.http.Put(ctx, path("/products", id), p)
	if err != nil {
		return nil, err
	}
	var updated Product
	if err := httputil.DecodeResponse(resp, "product", &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.http.Delete(ctx, path("/products", id))
	return err
}

// UpdateVariant replaces one variant of a product.
func (c *Client) UpdateVariant(ctx context.Context, productID, variantID string, v Variant) error {
	_, err := c.http.Put(ctx, path("/products", productID, "variants", variantID), v)
	return err
}

// DeleteVariant removes one variant of a product.
func (c *Client) DeleteVariant(ctx context.Context, productID, variantID string) error {
	_, err := c.http.Delete(ctx, path("/products", productID, "variants", variantID))
	return err
}

// UpdateAddon replaces one addon of a product.
func (c *Client) UpdateAddon(ctx context.Context, productID, addonID string, a Addon) error {
	_, err := c.http.Put(ctx, path("/products", productID, "addons", addonID), a)
	return err
}

// DeleteAddon removes one addon of a product.
func (c *Client) DeleteAddon(ctx context.Context, productID, addonID string) error {
	_, err := c.http.Delete(ctx, path("/products", productID, "addons", addonID))
	return err
}

// =============================================================================
// Discounts
// =============================================================================

// ListDiscounts lists a business's discounts. An empty id means the active
// store.
func (c *Client) ListDiscounts(ctx context.Context, businessID string) ([]Discount, error) {
	businessID, err := c.storeID(businessID)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Get(ctx, path("/discounts", businessID))
	if err != nil {
		return nil, err
	}
	var discounts []Discount
	if err := httputil.DecodeResponse(resp, "discounts", &discounts); err != nil {
		return nil, err
	}
	return discounts, nil
}

// CreateDiscount adds a discount. An empty BusinessID means the active store.
func (c *Client) CreateDiscount(ctx context.Context, d Discount) (*Discount, error) {
	businessID, err := c.storeID(d.BusinessID)
	if err != nil {
		return nil, err
	}
	d.BusinessID = businessID
	resp, err := c.http.Post(ctx, "/discounts", d)
	if err != nil {
		return nil, err
	}
	var created Discount
	if err := httputil.DecodeResponse(resp, "discount", &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateDiscount replaces a discount.
func (c *Client) UpdateDiscount(ctx context.Context, id string, d Discount) error {
	_, err := c.http.Put(ctx, path("/discounts", id), d)
	return err
}

// DeleteDiscount removes a discount.
func (c *Client) DeleteDiscount(ctx context.Context, id string) error {
	_, err := c.http.Delete(ctx, path("/discounts", id))
	return err
}
